package model

// JobStatus represents the state of a queued download job
type JobStatus string

const (
	// JobStatusPending means the job is queued but not started
	JobStatusPending JobStatus = "Pending"

	// JobStatusResolving means the source catalog is being fetched
	JobStatusResolving JobStatus = "Resolving"

	// JobStatusDownloading means one or two streams are transferring
	JobStatusDownloading JobStatus = "Downloading"

	// JobStatusFetchingArt means the cover art thumbnail is being fetched
	JobStatusFetchingArt JobStatus = "FetchingArt"

	// JobStatusTranscoding means the audio stream is being encoded
	JobStatusTranscoding JobStatus = "Transcoding"

	// JobStatusMuxing means both tracks are being merged into the output
	JobStatusMuxing JobStatus = "Muxing"

	// JobStatusStopped means the job was cancelled by the caller
	JobStatusStopped JobStatus = "Stopped"

	// JobStatusCompleted means the job finished successfully
	JobStatusCompleted JobStatus = "Completed"

	// JobStatusError means the job failed with an error
	JobStatusError JobStatus = "Error"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsActive returns true if the job is in an active state
func (s JobStatus) IsActive() bool {
	switch s {
	case JobStatusResolving, JobStatusDownloading, JobStatusFetchingArt,
		JobStatusTranscoding, JobStatusMuxing:
		return true
	}
	return false
}

// IsFinished returns true if the job is in a terminal state (completed, stopped, or error)
func (s JobStatus) IsFinished() bool {
	return s == JobStatusCompleted || s == JobStatusStopped || s == JobStatusError
}
