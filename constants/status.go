package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // queued for processing
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // stage 1 completed (text extracted)
	JobStatusLLMOK   JobStatus = "LLM_OK"  // stage 2 completed (profile extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// ExtractionStatus marks the state of a persisted artist record.
type ExtractionStatus string

const (
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFallback  ExtractionStatus = "completed_fallback"
)

// EnhancementStatus marks whether a record went through contact enhancement.
type EnhancementStatus string

const (
	EnhancementNone EnhancementStatus = ""
	EnhancementDone EnhancementStatus = "enhanced"
)

// Confidence labels reported on extracted profiles.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)
