package models

import "time"

type ResearchPaper struct {
	ID                  int64     `db:"id" json:"id"`
	Title               string    `db:"title" json:"title"`
	Abstract            string    `db:"abstract" json:"abstract"`
	Content             string    `db:"content" json:"content"`
	Analysis            *string   `db:"analysis" json:"analysis"`
	SubmissionTimestamp time.Time `db:"submission_timestamp" json:"submission_timestamp"`
}
