package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"curio/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrUnsupportedDriver is returned for drivers other than sqlite3, mysql and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, config.ErrMissingDSN
	}

	var (
		db  *sqlx.DB
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "sqlite3":
		db, err = sqlx.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// A single connection keeps :memory: databases shared and serializes sqlite writers.
		db.SetMaxOpenConns(1)
	case "mysql":
		db, err = sqlx.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	case "postgres", "postgresql":
		db, err = sqlx.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the required tables are present.
func Migrate(db *sqlx.DB) error {
	driver := db.DriverName()
	var stmts []string
	switch driver {
	case "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_message TEXT NOT NULL,
				bot_response TEXT NOT NULL,
				timestamp DATETIME NOT NULL,
				is_translated BOOLEAN NOT NULL DEFAULT 0,
				is_degraded BOOLEAN NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp ON chat_messages(timestamp DESC)`,
			`CREATE TABLE IF NOT EXISTS file_uploads (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				original_filename TEXT NOT NULL,
				stored_filename TEXT NOT NULL UNIQUE,
				file_path TEXT NOT NULL,
				file_type TEXT NOT NULL,
				upload_timestamp DATETIME NOT NULL,
				analysis TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS research_papers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				abstract TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				analysis TEXT,
				submission_timestamp DATETIME NOT NULL
			)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_messages (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				user_message MEDIUMTEXT NOT NULL,
				bot_response MEDIUMTEXT NOT NULL,
				timestamp DATETIME(6) NOT NULL,
				is_translated BOOLEAN NOT NULL DEFAULT FALSE,
				is_degraded BOOLEAN NOT NULL DEFAULT FALSE,
				PRIMARY KEY (id),
				INDEX idx_chat_messages_timestamp (timestamp)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS file_uploads (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				original_filename VARCHAR(255) NOT NULL,
				stored_filename VARCHAR(255) NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				file_type VARCHAR(50) NOT NULL,
				upload_timestamp DATETIME(6) NOT NULL,
				analysis MEDIUMTEXT,
				PRIMARY KEY (id),
				UNIQUE KEY uniq_stored_filename (stored_filename)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS research_papers (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				title VARCHAR(255) NOT NULL,
				abstract TEXT NOT NULL,
				content MEDIUMTEXT NOT NULL,
				analysis MEDIUMTEXT,
				submission_timestamp DATETIME(6) NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	case "postgres":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_messages (
				id BIGSERIAL PRIMARY KEY,
				user_message TEXT NOT NULL,
				bot_response TEXT NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL,
				is_translated BOOLEAN NOT NULL DEFAULT FALSE,
				is_degraded BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp ON chat_messages(timestamp DESC)`,
			`CREATE TABLE IF NOT EXISTS file_uploads (
				id BIGSERIAL PRIMARY KEY,
				original_filename VARCHAR(255) NOT NULL,
				stored_filename VARCHAR(255) NOT NULL UNIQUE,
				file_path VARCHAR(512) NOT NULL,
				file_type VARCHAR(50) NOT NULL,
				upload_timestamp TIMESTAMPTZ NOT NULL,
				analysis TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS research_papers (
				id BIGSERIAL PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				abstract TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				analysis TEXT,
				submission_timestamp TIMESTAMPTZ NOT NULL
			)`,
		}
	default:
		return fmt.Errorf("migrate: %w: %s", ErrUnsupportedDriver, driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
