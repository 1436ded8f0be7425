package domain

import "time"

// ReprojectionJob asks for a batch of WKT geometries to be moved from one
// CRS to another.
type ReprojectionJob struct {
	ID         string    `json:"id"`
	SourceCRS  string    `json:"source_crs"`
	TargetCRS  string    `json:"target_crs,omitempty"`
	Geometries []string  `json:"geometries"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReprojectionResult answers a job. Either Geometries (same order and length
// as the request) or Error is set.
type ReprojectionResult struct {
	JobID      string    `json:"job_id"`
	TargetCRS  string    `json:"target_crs"`
	Geometries []string  `json:"geometries,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// ConversionEvent is the audit record published after a conversion.
type ConversionEvent struct {
	SourceCRS string        `json:"source_crs"`
	TargetCRS string        `json:"target_crs"`
	Kind      string        `json:"kind"`
	Points    int           `json:"points"`
	Status    string        `json:"status"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
}
