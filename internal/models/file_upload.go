package models

import "time"

// FileUpload records a stored upload and the analysis produced for it.
type FileUpload struct {
	ID               int64     `db:"id" json:"id"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	StoredFilename   string    `db:"stored_filename" json:"stored_filename"`
	FilePath         string    `db:"file_path" json:"file_path"`
	FileType         string    `db:"file_type" json:"file_type"`
	UploadTimestamp  time.Time `db:"upload_timestamp" json:"upload_timestamp"`
	Analysis         *string   `db:"analysis" json:"analysis"`
}
