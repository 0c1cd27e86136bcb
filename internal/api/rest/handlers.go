package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/fieldtel/number-provisioning-backend/internal/domain/errors"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
	"github.com/fieldtel/number-provisioning-backend/internal/service/provisioning"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	cfg      *config.Config
	logger   *slog.Logger
	svc      *provisioning.Service
	validate *validator.Validate
}

func NewHandler(cfg *config.Config, logger *slog.Logger, svc *provisioning.Service) *Handler {
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		svc:      svc,
		validate: validator.New(),
	}
}

// ResponseEnvelope wraps every API response.
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type validateRequest struct {
	Records []numbering.RawRecord `json:"records" validate:"required,min=1,dive"`
}

type generateRequest struct {
	Counts map[string]int `json:"counts" validate:"required,min=1,dive,gt=0"`
}

type groupRequest struct {
	Contacts  []numbering.RawRecord       `json:"contacts" validate:"required,min=1"`
	Generated []numbering.GeneratedNumber `json:"generated" validate:"required,min=1"`
}

type groupResponse struct {
	Groups      []numbering.Group          `json:"groups"`
	Diagnostics numbering.GroupDiagnostics `json:"diagnostics"`
}

// ValidateRecords accepts a JSON record batch or a text/csv body and returns
// per-record outcomes: rejected records are reported alongside, never as an
// HTTP failure.
func (h *Handler) ValidateRecords(w http.ResponseWriter, r *http.Request) {
	var records []numbering.RawRecord

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		parsed, err := provisioning.ParseRecords(r.Body)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		records = parsed
	} else {
		var req validateRequest
		if !h.decode(w, r, &req) {
			return
		}
		records = req.Records
	}

	if len(records) == 0 {
		h.writeError(w, r, apperrors.NewValidationError("EMPTY_BATCH", "no records to validate"))
		return
	}
	if len(records) > h.cfg.Generation.MaxRecords {
		h.writeError(w, r, apperrors.NewValidationError("BATCH_TOO_LARGE", "record batch exceeds configured limit").
			WithDetails(map[string]interface{}{"limit": h.cfg.Generation.MaxRecords, "received": len(records)}))
		return
	}

	report := h.svc.ValidateRecords(r.Context(), records)
	h.writeData(w, r, http.StatusOK, report)
}

// GenerateNumbers synthesizes numbers per country. Exhausted plans shorten
// the result; the shortfall is part of the payload, not an error.
func (h *Handler) GenerateNumbers(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	total := 0
	for _, n := range req.Counts {
		total += n
	}
	if total > h.cfg.Generation.MaxBatchSize {
		h.writeError(w, r, apperrors.NewValidationError("BATCH_TOO_LARGE", "requested count exceeds configured limit").
			WithDetails(map[string]interface{}{"limit": h.cfg.Generation.MaxBatchSize, "requested": total}))
		return
	}

	result, err := h.svc.GenerateNumbers(r.Context(), req.Counts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, r, http.StatusOK, result)
}

// GroupContacts matches contacts to a generated pool by prefix, with
// dial-code fallback; dropped contacts come back in the diagnostics.
func (h *Handler) GroupContacts(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !h.decode(w, r, &req) {
		return
	}

	groups, diag := h.svc.GroupContacts(r.Context(), req.Contacts, req.Generated)
	h.writeData(w, r, http.StatusOK, groupResponse{Groups: groups, Diagnostics: diag})
}

// ProvisionedSummary reports the persisted per-country provisioning counts.
func (h *Handler) ProvisionedSummary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.ProvisionedSummary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, r, http.StatusOK, map[string]interface{}{"counts": counts})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

// NotFound answers unmatched routes with the standard envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperrors.NewNotFoundError("route"))
}

// decode unmarshals and validates a JSON request body, writing the error
// response itself when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("MALFORMED_JSON", "could not parse request body").WithCause(err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_REQUEST", err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	h.writeEnvelope(w, r, status, ResponseEnvelope{Success: true, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed", "code", appErr.Code, "error", err)
	}
	h.writeEnvelope(w, r, appErr.StatusCode, ResponseEnvelope{
		Success: false,
		Error: &ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env ResponseEnvelope) {
	env.Meta = ResponseMeta{
		RequestID: requestIDFrom(r.Context()),
		Timestamp: time.Now().UTC(),
		Version:   h.cfg.Version,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.ErrorContext(r.Context(), "encoding response failed", "error", err)
	}
}
