package download

import (
	"errors"
	"fmt"

	"github.com/ytget/yt-batch/internal/model"
)

var (
	ErrCancelled     = errors.New("download cancelled")
	ErrQueueRunning  = errors.New("queue is already running")
	ErrNotConfigured = errors.New("queue is not configured")
)

// TransferError is returned when a source stream fails mid-download
type TransferError struct {
	Track model.Track
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s transfer failed: %v", e.Track, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
