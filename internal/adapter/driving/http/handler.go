package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewledger/internal/application"
	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

const (
	// DefaultAuthorHeader carries the authenticated principal set by the fronting proxy.
	DefaultAuthorHeader = "X-Remote-User"

	// AnonymousAuthor is recorded when no principal is supplied.
	AnonymousAuthor = "Anonymous"

	maxReviewBodyBytes = 64 << 10
	maxReportBodyBytes = 32 << 20
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	reviewSvc    *application.ReviewStatusService
	importSvc    *application.ImportService
	authorHeader string
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. An empty
// authorHeader falls back to DefaultAuthorHeader.
func NewHandler(
	reviewSvc *application.ReviewStatusService,
	importSvc *application.ImportService,
	authorHeader string,
	logger *slog.Logger,
) *Handler {
	if authorHeader == "" {
		authorHeader = DefaultAuthorHeader
	}
	return &Handler{
		reviewSvc:    reviewSvc,
		importSvc:    importSvc,
		authorHeader: authorHeader,
		logger:       logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/reports/{hash}", h.GetReport)
	mux.HandleFunc("PUT /api/v1/reports/{hash}/review", h.ChangeReviewStatus)
	mux.HandleFunc("GET /api/v1/reports/{hash}/comments", h.ListComments)
	mux.HandleFunc("GET /api/v1/runs/{run}/findings", h.ListRunFindings)
	mux.HandleFunc("POST /api/v1/runs/{run}/sarif", h.ImportSARIF)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetReport returns a finding together with its review data.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")

	report, err := h.reviewSvc.GetReport(r.Context(), hash)
	if err != nil {
		h.writeServiceError(w, err, "failed to get report", "hash", hash)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

// ChangeReviewStatus applies a review status and comment to a finding.
// The response reports whether anything changed; an identical resubmission
// succeeds with changed=false.
func (h *Handler) ChangeReviewStatus(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")

	var req ReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReviewBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := model.ParseReviewStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	author := h.author(r)
	changed, err := h.reviewSvc.ChangeReviewStatus(r.Context(), author, hash, status, model.NormalizeComment(req.Comment))
	if err != nil {
		h.writeServiceError(w, err, "failed to change review status", "hash", hash, "author", author)
		return
	}

	writeJSON(w, http.StatusOK, ReviewResponse{Success: true, Changed: changed})
}

// ListComments returns the comments of a finding in insertion order, optionally
// filtered with ?kind=system or ?kind=user.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")

	var kind model.CommentKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := model.ParseCommentKind(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}

	comments, err := h.reviewSvc.ListComments(r.Context(), hash, kind)
	if err != nil {
		h.writeServiceError(w, err, "failed to list comments", "hash", hash)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRunFindings returns the findings last imported under a run.
func (h *Handler) ListRunFindings(w http.ResponseWriter, r *http.Request) {
	run := r.PathValue("run")

	findings, err := h.importSvc.ListRun(r.Context(), run)
	if err != nil {
		h.writeServiceError(w, err, "failed to list run findings", "run", run)
		return
	}

	resp := make([]FindingResponse, 0, len(findings))
	for _, f := range findings {
		resp = append(resp, toFindingResponse(f))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ImportSARIF registers the findings of a SARIF log posted as the request body.
func (h *Handler) ImportSARIF(w http.ResponseWriter, r *http.Request) {
	run := r.PathValue("run")

	summary, err := h.importSvc.Import(r.Context(), run, http.MaxBytesReader(w, r.Body, maxReportBodyBytes))
	if err != nil {
		h.writeServiceError(w, err, "failed to import SARIF report", "run", run)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Run:      summary.RunName,
		Imported: summary.Imported,
		Skipped:  summary.Skipped,
	})
}

func (h *Handler) author(r *http.Request) string {
	if author := strings.TrimSpace(r.Header.Get(h.authorHeader)); author != "" {
		return author
	}
	return AnonymousAuthor
}

// writeServiceError maps domain errors onto HTTP status codes. Unexpected
// errors are logged and hidden behind a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string, args ...any) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "finding not found")
	case errors.Is(err, model.ErrInvalidStatus), errors.Is(err, model.ErrInvalidReport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "finding was modified concurrently, retry the request")
	case errors.Is(err, model.ErrStorage):
		h.logger.Error(msg, append(args, "error", err)...)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		h.logger.Error(msg, append(args, "error", err)...)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
