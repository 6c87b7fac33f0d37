package models

// JobStatus is the lifecycle state of a streaming job (spec.md §3).
type JobStatus string

const (
	JobStreaming JobStatus = "streaming"
	JobFinished  JobStatus = "finished"
)

// Phase is the current stage of a job's extraction pipeline.
type Phase string

const (
	PhaseParse   Phase = "parse"
	PhaseExtract Phase = "extract"
)

// Job is the server-side lifecycle record for one upload→stream→verify
// workflow (spec.md §3).
type Job struct {
	ID        string
	Status    JobStatus
	Phase     Phase
	Processed int
	Total     int
	TS        int64
}

// ProgressSnapshot is the persisted latest (phase, processed, total, ts)
// tuple used to resume UI state on reconnect (GLOSSARY: Snapshot).
type ProgressSnapshot struct {
	Phase     Phase `json:"phase"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	TS        int64 `json:"ts"`
}
