package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ReviewRequest is the JSON body for the change review status endpoint.
// A null or missing comment is the same as an empty one.
type ReviewRequest struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment"`
}

// ReviewResponse is returned after a review status change request.
type ReviewResponse struct {
	Success bool `json:"success"`
	Changed bool `json:"changed"`
}

// ReviewDataResponse is the JSON representation of a finding's review record.
type ReviewDataResponse struct {
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	Comment     string `json:"comment"`
	Author      string `json:"author"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	Version     int64  `json:"version"`
}

// FindingResponse is the JSON representation of a finding reference.
type FindingResponse struct {
	Hash      string `json:"hash"`
	RunName   string `json:"run_name"`
	CheckerID string `json:"checker_id"`
	FilePath  string `json:"file_path"`
	Line      int    `json:"line"`
	Message   string `json:"message"`
}

// ReportResponse is a finding together with its review data.
type ReportResponse struct {
	FindingResponse
	ReviewData ReviewDataResponse `json:"review_data"`
}

// CommentResponse is the JSON representation of a ledger comment.
type CommentResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	TextHTML  string `json:"text_html"`
	CreatedAt string `json:"created_at"`
}

// ImportResponse summarizes a SARIF import.
type ImportResponse struct {
	Run      string `json:"run"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toFindingResponse(f model.Finding) FindingResponse {
	return FindingResponse{
		Hash:      f.Hash,
		RunName:   f.RunName,
		CheckerID: f.CheckerID,
		FilePath:  f.FilePath,
		Line:      f.Line,
		Message:   f.Message,
	}
}

// toReportResponse converts a domain Report to its JSON representation.
// updated_at is omitted for findings that were never reviewed.
func toReportResponse(r model.Report) ReportResponse {
	review := ReviewDataResponse{
		Status:      string(r.Review.Status),
		StatusLabel: r.Review.Status.Label(),
		Comment:     r.Review.Comment,
		Author:      r.Review.Author,
		Version:     r.Review.Version,
	}
	if !r.Review.UpdatedAt.IsZero() {
		review.UpdatedAt = r.Review.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return ReportResponse{
		FindingResponse: toFindingResponse(r.Finding),
		ReviewData:      review,
	}
}

func toCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Author:    c.Author,
		Text:      c.Text,
		TextHTML:  RenderMarkdown(c.Text),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
