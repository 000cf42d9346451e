package model

import "time"

// Finding is the minimal reference to a static-analysis result needed to
// validate a hash and show context next to its review data.
type Finding struct {
	Hash      string // Content-derived, stable across re-analysis.
	RunName   string
	CheckerID string
	FilePath  string
	Line      int
	Message   string
	CreatedAt time.Time
}

// Report pairs a finding with its current review data.
type Report struct {
	Finding Finding
	Review  ReviewRecord
}
