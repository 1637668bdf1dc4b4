package models

import "time"

// ImageModelDallE3 is the default image model.
const ImageModelDallE3 = "dall-e-3"

// GenerationRecord is a completed image generation.
type GenerationRecord struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	ResultURL string    `json:"resultUrl"`
	Timestamp time.Time `json:"timestamp"`
}

// JobKind tells chat completions from image renders.
type JobKind string

const (
	JobKindChat  JobKind = "chat"
	JobKindImage JobKind = "image"
)

// JobStatus is the state of a generation job. A job starts Pending and
// moves exactly once, to Completed or Failed.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// GenerationJob is a transient, in-memory submission.
type GenerationJob struct {
	ID          string
	Kind        JobKind
	ThreadID    string // empty for image jobs
	Status      JobStatus
	SubmittedAt time.Time
	SettledAt   time.Time

	// Discarded is set when a completed chat result could not be applied
	// because its thread was deleted in the meantime.
	Discarded bool
	// Err describes why a job failed.
	Err string
	// MessageID is the assistant message appended by a completed chat job.
	MessageID string
	// RecordID is the generation record produced by a completed image job.
	RecordID string
}
