package driven

import (
	"io"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// ReportParser defines the driven port for turning an analyzer report into
// finding references.
type ReportParser interface {
	// Parse reads a report and returns the findings it contains, tagged with
	// runName. Results that carry no usable hash are counted in skipped.
	Parse(r io.Reader, runName string) (findings []model.Finding, skipped int, err error)
}
