package storage

import (
	"fmt"

	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCausePathError    = "path error"
	ErrCauseWriteFailure = "write failed"
	ErrCauseStatFailure  = "stat failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCausePathError, ErrCauseWriteFailure, ErrCauseStatFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
