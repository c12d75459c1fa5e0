package drill

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/quantlab/incident-drill/internal/domain"
	"github.com/quantlab/incident-drill/internal/pkg/httputil"
)

// Handler handles HTTP requests for the drill module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new drill handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers drill routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Get("/phases", h.ListSessionPhases)
			r.Post("/phases/{phase}/select", h.SelectPhase)
			r.Post("/phases/{phase}/advance", h.AdvancePhase)
			r.Get("/record", h.GetRecord)
			r.Get("/report", h.GetReport)
			r.Post("/checkpoints/{phase}", h.GradeCheckpoint)
		})
	})

	r.Get("/phases", h.ListPhases)
	r.Get("/phases/{phase}/guide", h.GetGuide)
	r.Get("/policy", h.GetPolicy)
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrSessionNotFound, Status: http.StatusNotFound},
	{Error: ErrTooManySessions, Status: http.StatusTooManyRequests},
	{Error: ErrInvalidTransition, Status: http.StatusConflict},
	{Error: ErrPhaseNotEnabled, Status: http.StatusConflict},
	{Error: ErrPreconditionNotMet, Status: http.StatusConflict},
	{Error: ErrIncompleteRecord, Status: http.StatusConflict},
	{Error: ErrNoCheckpoint, Status: http.StatusNotFound},
}

// SessionResponse is the host-facing view of a session.
type SessionResponse struct {
	ID           string           `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	CurrentPhase domain.Phase     `json:"current_phase"`
	Phases       []PhaseState     `json:"phases"`
	Record       *domain.Incident `json:"record"`
}

func newSessionResponse(sess *Session) SessionResponse {
	return SessionResponse{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		UpdatedAt:    sess.UpdatedAt,
		CurrentPhase: sess.Gate.Current(),
		Phases:       PhaseStates(sess.Gate),
		Record:       sess.Incident,
	}
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CreateSession(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, newSessionResponse(sess))
}

// GetSession handles GET /sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, newSessionResponse(sess))
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSessionPhases handles GET /sessions/{sessionID}/phases.
func (h *Handler) ListSessionPhases(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, PhaseStates(sess.Gate))
}

// SelectPhase handles POST /sessions/{sessionID}/phases/{phase}/select.
func (h *Handler) SelectPhase(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.service.SelectPhase(r.Context(), chi.URLParam(r, "sessionID"), phase)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, newSessionResponse(sess))
}

// AdvancePhase handles POST /sessions/{sessionID}/phases/{phase}/advance.
func (h *Handler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.service.AdvancePhase(r.Context(), chi.URLParam(r, "sessionID"), phase)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, newSessionResponse(sess))
}

// GetRecord handles GET /sessions/{sessionID}/record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, sess.Incident)
}

// ReportResponse is the JSON form of the formal report.
type ReportResponse struct {
	IncidentID string  `json:"incident_id"`
	Filename   string  `json:"filename"`
	Summary    Summary `json:"summary"`
	Report     string  `json:"report"`
}

// GetReport handles GET /sessions/{sessionID}/report.
// With ?download=1 the report is returned as a plain-text attachment
// named incident_report_<id>.txt; otherwise as JSON with the executive
// summary alongside.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	sess, report, err := h.service.Report(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	if isDownloadRequest(r) {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", ReportFilename(sess.Incident)))
		httputil.Text(w, http.StatusOK, report)
		return
	}

	httputil.Success(w, http.StatusOK, ReportResponse{
		IncidentID: sess.Incident.ID,
		Filename:   ReportFilename(sess.Incident),
		Summary:    Summarize(sess.Incident),
		Report:     report,
	})
}

func isDownloadRequest(r *http.Request) bool {
	switch r.URL.Query().Get("download") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// CheckpointRequest represents a checkpoint answer body.
type CheckpointRequest struct {
	Answer *bool `json:"answer" validate:"required"`
}

// GradeCheckpoint handles POST /sessions/{sessionID}/checkpoints/{phase}.
func (h *Handler) GradeCheckpoint(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.GradeCheckpoint(r.Context(), chi.URLParam(r, "sessionID"), phase, *req.Answer)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ListPhases handles GET /phases: the session-independent workflow
// definition in order.
func (h *Handler) ListPhases(w http.ResponseWriter, _ *http.Request) {
	type phaseInfo struct {
		Phase domain.Phase `json:"phase"`
		Label string       `json:"label"`
	}

	phases := domain.Phases()
	out := make([]phaseInfo, 0, len(phases))
	for _, p := range phases {
		out = append(out, phaseInfo{Phase: p, Label: p.Label()})
	}

	httputil.Success(w, http.StatusOK, out)
}

// GetGuide handles GET /phases/{phase}/guide.
func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	guide, ok := GuideFor(phase)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "no guide for phase")
		return
	}

	httputil.Success(w, http.StatusOK, guide)
}

// GetPolicy handles GET /policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, h.service.Policy())
}
