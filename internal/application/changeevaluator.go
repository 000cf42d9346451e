package application

import (
	"fmt"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// Decision is the outcome of evaluating a proposed review change against the
// current record.
type Decision struct {
	NoOp bool

	// Record is the proposed record. Version still holds the version it was
	// derived from; the registry assigns the next one.
	Record model.ReviewRecord

	// AuditText is the SYSTEM comment describing the change. Empty for a no-op.
	AuditText string
}

// Decide compares the proposed status and comment with current. The change is
// a no-op only when both the status and the comment are unchanged; editing the
// comment alone is a meaningful change.
func Decide(current model.ReviewRecord, status model.ReviewStatus, comment string) (Decision, error) {
	if !status.IsValid() {
		return Decision{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	statusChanged := status != current.Status
	commentChanged := comment != current.Comment

	if !statusChanged && !commentChanged {
		return Decision{NoOp: true, Record: current}, nil
	}

	next := current
	next.Status = status
	next.Comment = comment

	return Decision{
		Record:    next,
		AuditText: auditText(current, status, comment, statusChanged),
	}, nil
}

// auditText renders the SYSTEM comment for a meaningful change.
func auditText(current model.ReviewRecord, status model.ReviewStatus, comment string, statusChanged bool) string {
	if statusChanged {
		text := fmt.Sprintf("Review status changed from '%s' to '%s'", current.Status.Label(), status.Label())
		if comment != "" {
			text += fmt.Sprintf(` with comment: "%s"`, comment)
		}
		return text
	}

	if comment == "" {
		return fmt.Sprintf("Review comment removed on '%s'", status.Label())
	}
	return fmt.Sprintf(`Review comment updated on '%s': "%s"`, status.Label(), comment)
}
