package model

import "time"

// RunStatus represents the current state of a comparison run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary holds the five headline metrics of a completed run plus
// where the XLSX report was written, if anywhere.
type RunSummary struct {
	TotalA     int    `json:"total_a"`
	TotalB     int    `json:"total_b"`
	Matches    int    `json:"matches"`
	OnlyA      int    `json:"only_a"`
	OnlyB      int    `json:"only_b"`
	ExportPath string `json:"export_path,omitempty"`
}

// Run records one comparison invocation in the history store.
type Run struct {
	ID        string      `json:"id"`
	SourceA   string      `json:"source_a"`
	SourceB   string      `json:"source_b"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
