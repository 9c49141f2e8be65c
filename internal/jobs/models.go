package jobs

import (
	"time"

	"clipforge/internal/media"
)

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source kinds accepted by composition jobs.
const (
	SourceImage = "image"
	SourceAudio = "audio"
	SourceClip  = "clip"
)

// Source is one remote input and, once fetched, its local copy.
type Source struct {
	URL       string
	Kind      string
	LocalPath string
}

// Result describes the finished output of a completed job.
type Result struct {
	OutputFile string
	DurationMs int64
}

// Job is the orchestrator's record for one composition request. It is
// mutated only by the job's own background goroutine; everyone else sees
// snapshots.
type Job struct {
	ID          string
	Kind        media.ComposeKind
	Status      Status
	Progress    int
	Message     string
	Sources     []Source
	Result      *Result
	Error       string
	HasAudio    bool
	HasOverlays bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	copied := *j
	copied.Sources = make([]Source, len(j.Sources))
	copy(copied.Sources, j.Sources)
	if j.Result != nil {
		result := *j.Result
		copied.Result = &result
	}
	return &copied
}
