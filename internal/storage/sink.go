package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/pkg/failure"
	"github.com/rohmanhakim/css-svg/pkg/fileutil"
	"github.com/rohmanhakim/css-svg/pkg/hashutil"
)

/*
Responsibilities
- Persist rewritten stylesheets
- Place output next to the source or under an output directory
- Keep the source file mode

Output Characteristics
- Atomic replacement, readers never see a partial file
- Idempotent writes
*/

type Sink interface {
	Write(
		sourcePath string,
		outputDir string,
		content []byte,
	) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
	}
}

// Write stores content for the stylesheet at sourcePath. An empty outputDir
// replaces the source in place; otherwise the file lands under outputDir with
// the source's base name.
func (s *LocalSink) Write(
	sourcePath string,
	outputDir string,
	content []byte,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(sourcePath, outputDir, content)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPath, sourcePath),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	return writeResult, nil
}

// Destination returns where Write would store the stylesheet at sourcePath.
func Destination(sourcePath string, outputDir string) string {
	if outputDir == "" {
		return sourcePath
	}
	return filepath.Join(outputDir, filepath.Base(sourcePath))
}

func write(
	sourcePath string,
	outputDir string,
	content []byte,
) (WriteResult, failure.ClassifiedError) {
	perm := os.FileMode(0644)
	info, err := os.Stat(sourcePath)
	if err != nil {
		if outputDir == "" {
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseStatFailure,
				Path:      sourcePath,
			}
		}
	} else {
		perm = info.Mode().Perm()
	}

	if outputDir != "" {
		if err := fileutil.EnsureDir(outputDir); err != nil {
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCausePathError,
				Path:      outputDir,
			}
		}
	}

	fullPath := Destination(sourcePath, outputDir)
	if err := fileutil.WriteFileAtomic(fullPath, content, perm); err != nil {
		cause := StorageErrorCause(ErrCauseWriteFailure)
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) && fileErr.Cause == fileutil.ErrCausePathError {
			cause = ErrCausePathError
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(fullPath, hashutil.ShortDigest(content), len(content)), nil
}
