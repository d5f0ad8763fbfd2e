package models

import (
	"time"

	"github.com/google/uuid"
)

// BlobOpKind is the multi-step change being journaled
type BlobOpKind string

const (
	BlobOpReplace BlobOpKind = "replace"
	BlobOpDelete  BlobOpKind = "delete"
)

// BlobOpStatus tracks a journal entry through reconciliation
type BlobOpStatus string

const (
	BlobOpPending       BlobOpStatus = "pending"
	BlobOpDone          BlobOpStatus = "done"
	BlobOpFailed        BlobOpStatus = "failed"
	BlobOpResolved      BlobOpStatus = "resolved"
	BlobOpUnrecoverable BlobOpStatus = "unrecoverable"
)

// Valid reports whether s is one of the known statuses
func (s BlobOpStatus) Valid() bool {
	switch s {
	case BlobOpPending, BlobOpDone, BlobOpFailed, BlobOpResolved, BlobOpUnrecoverable:
		return true
	}
	return false
}

// BlobOperation is one row of the 'blob_operations' journal. A replace or
// delete spans the blob store and the database; the journal records intent
// so an interrupted sequence can be detected and repaired.
type BlobOperation struct {
	ID          int64        `json:"id" db:"id"`
	Kind        BlobOpKind   `json:"kind" db:"kind"`
	Resource    ContentKind  `json:"resource" db:"resource"`
	RecordID    uuid.UUID    `json:"recordId" db:"record_id"`
	Bucket      string       `json:"bucket" db:"bucket"`
	OldPath     string       `json:"oldPath" db:"old_path"`
	NewPath     *string      `json:"newPath,omitempty" db:"new_path"`
	NewFileName *string      `json:"newFileName,omitempty" db:"new_file_name"`
	NewFileSize *int64       `json:"newFileSize,omitempty" db:"new_file_size"`
	Status      BlobOpStatus `json:"status" db:"status"`
	LastError   *string      `json:"lastError,omitempty" db:"last_error"`
	Attempts    int          `json:"attempts" db:"attempts"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}
