package models

import "time"

// ChatMessage is one persisted user/assistant exchange.
type ChatMessage struct {
	ID           int64     `db:"id" json:"id"`
	UserMessage  string    `db:"user_message" json:"user_message"`
	BotResponse  string    `db:"bot_response" json:"bot_response"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	IsTranslated bool      `db:"is_translated" json:"is_translated"`
	// IsDegraded marks responses produced by the stub generator or an apology after an upstream failure.
	IsDegraded bool `db:"is_degraded" json:"is_degraded"`
}
