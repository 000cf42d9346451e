// Package sarif reads SARIF 2.1.0 logs into finding references.
package sarif

import (
	"fmt"
	"io"
	"sort"
	"time"

	gosarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// primaryFingerprintKey is the partial fingerprint most analyzers emit for a
// location-independent result hash.
const primaryFingerprintKey = "primaryLocationLineHash"

// Compile-time interface satisfaction check.
var _ driven.ReportParser = (*Parser)(nil)

// Parser converts SARIF results into findings. The finding hash is taken from
// the result fingerprints as emitted by the analyzer.
type Parser struct {
	now func() time.Time
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse reads a SARIF log from r. Results without any fingerprint are skipped.
func (p *Parser) Parse(r io.Reader, runName string) ([]model.Finding, int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read sarif log: %w", err)
	}

	report, err := gosarif.FromBytes(content)
	if err != nil {
		return nil, 0, fmt.Errorf("decode sarif log: %w", err)
	}
	if len(report.Runs) == 0 {
		return nil, 0, fmt.Errorf("sarif log has no runs")
	}

	seenAt := p.now().UTC()

	var (
		findings []model.Finding
		skipped  int
	)
	for _, run := range report.Runs {
		if run == nil {
			continue
		}
		for _, res := range run.Results {
			if res == nil {
				continue
			}

			hash := resultHash(res)
			if hash == "" {
				skipped++
				continue
			}

			finding := model.Finding{
				Hash:      hash,
				RunName:   runName,
				CreatedAt: seenAt,
			}
			if res.RuleID != nil {
				finding.CheckerID = *res.RuleID
			}
			if res.Message.Text != nil {
				finding.Message = *res.Message.Text
			}
			finding.FilePath, finding.Line = primaryLocation(res)

			findings = append(findings, finding)
		}
	}

	return findings, skipped, nil
}

// resultHash picks the primary partial fingerprint, then any other partial
// fingerprint, then any full fingerprint, in key order.
func resultHash(res *gosarif.Result) string {
	if v := fingerprintValue(res.PartialFingerprints[primaryFingerprintKey]); v != "" {
		return v
	}
	if v := firstFingerprint(res.PartialFingerprints); v != "" {
		return v
	}
	return firstFingerprint(res.Fingerprints)
}

func firstFingerprint(prints map[string]interface{}) string {
	keys := make([]string, 0, len(prints))
	for k := range prints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if v := fingerprintValue(prints[k]); v != "" {
			return v
		}
	}
	return ""
}

func fingerprintValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func primaryLocation(res *gosarif.Result) (string, int) {
	for _, loc := range res.Locations {
		if loc == nil || loc.PhysicalLocation == nil {
			continue
		}

		var path string
		var line int
		if al := loc.PhysicalLocation.ArtifactLocation; al != nil && al.URI != nil {
			path = *al.URI
		}
		if region := loc.PhysicalLocation.Region; region != nil && region.StartLine != nil {
			line = *region.StartLine
		}
		return path, line
	}
	return "", 0
}
