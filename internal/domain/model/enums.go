package model

import (
	"fmt"
	"strings"
)

// ReviewStatus is the reviewer-assigned disposition of a finding.
type ReviewStatus string

const (
	ReviewStatusUnreviewed    ReviewStatus = "UNREVIEWED"
	ReviewStatusConfirmed     ReviewStatus = "CONFIRMED"
	ReviewStatusFalsePositive ReviewStatus = "FALSE_POSITIVE"
	ReviewStatusIntentional   ReviewStatus = "INTENTIONAL"
)

// ReviewStatuses lists every recognized status in display order.
var ReviewStatuses = []ReviewStatus{
	ReviewStatusUnreviewed,
	ReviewStatusConfirmed,
	ReviewStatusFalsePositive,
	ReviewStatusIntentional,
}

// IsValid reports whether s is one of the recognized statuses.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusUnreviewed, ReviewStatusConfirmed, ReviewStatusFalsePositive, ReviewStatusIntentional:
		return true
	}
	return false
}

// Label returns the human-readable name used in audit comments.
func (s ReviewStatus) Label() string {
	switch s {
	case ReviewStatusUnreviewed:
		return "Unreviewed"
	case ReviewStatusConfirmed:
		return "Confirmed bug"
	case ReviewStatusFalsePositive:
		return "False positive"
	case ReviewStatusIntentional:
		return "Intentional"
	}
	return string(s)
}

// ParseReviewStatus converts user input such as "false_positive" or
// "FALSE-POSITIVE" into a ReviewStatus. Unknown values wrap ErrInvalidStatus.
func ParseReviewStatus(raw string) (ReviewStatus, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	s := ReviewStatus(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// CommentKind distinguishes machine-generated audit entries from free-text comments.
type CommentKind string

const (
	CommentKindSystem CommentKind = "SYSTEM" // Produced only by the review-status engine.
	CommentKindUser   CommentKind = "USER"   // Free-text comments from reviewers.
)

// ParseCommentKind converts "system" / "user" (any case) into a CommentKind.
func ParseCommentKind(raw string) (CommentKind, error) {
	switch CommentKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case CommentKindSystem:
		return CommentKindSystem, nil
	case CommentKindUser:
		return CommentKindUser, nil
	}
	return "", fmt.Errorf("unknown comment kind %q", raw)
}
