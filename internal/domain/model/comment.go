package model

import "time"

// Comment is an append-only entry attached to a finding.
type Comment struct {
	ID          int64
	FindingHash string
	Kind        CommentKind
	Author      string
	Text        string
	CreatedAt   time.Time
}

// NormalizeComment maps an absent comment to the empty string so that "no
// comment" has a single representation. Text is otherwise kept verbatim.
func NormalizeComment(comment *string) string {
	if comment == nil {
		return ""
	}
	return *comment
}
