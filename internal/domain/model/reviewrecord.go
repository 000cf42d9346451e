package model

import "time"

// ReviewRecord is the current review state of a single finding.
type ReviewRecord struct {
	FindingHash string
	Status      ReviewStatus
	Comment     string
	Author      string    // Principal that made the last meaningful change.
	UpdatedAt   time.Time // Zero until the first meaningful change.
	Version     int64     // 0 means no change has ever been recorded.
}

// DefaultReviewRecord returns the implicit record of a never-reviewed finding.
func DefaultReviewRecord(hash string) ReviewRecord {
	return ReviewRecord{
		FindingHash: hash,
		Status:      ReviewStatusUnreviewed,
	}
}

// ReviewChange describes a meaningful change that was committed, including
// the audit text recorded for it.
type ReviewChange struct {
	FindingHash string
	OldStatus   ReviewStatus
	NewStatus   ReviewStatus
	OldComment  string
	NewComment  string
	Author      string
	AuditText   string
	Version     int64
	ChangedAt   time.Time
}
