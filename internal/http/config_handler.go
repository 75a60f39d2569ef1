package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-reservation/internal/application"
)

type configService interface {
	GetSystemConfig(ctx context.Context, principal application.Principal) (application.SystemConfig, error)
	SetAutoApprove(ctx context.Context, params application.SetAutoApproveParams) (application.SystemConfig, error)
}

// ConfigHandler serves the process-wide settings singleton.
type ConfigHandler struct {
	service   configService
	responder responder
	logger    *slog.Logger
}

// NewConfigHandler constructs a system configuration handler.
func NewConfigHandler(service configService, logger *slog.Logger) *ConfigHandler {
	base := defaultLogger(logger)
	return &ConfigHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ConfigHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ConfigHandler", operation, attrs...)
}

// Get returns the current settings.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	config, err := h.service.GetSystemConfig(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID).ErrorContext(r.Context(), "config lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConfigDTO(config))
}

type updateConfigRequest struct {
	AutoApprove bool `json:"auto_approve"`
}

// Update flips the auto-approve gate.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode config request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update",
		"principal_id", principal.UserID,
		"auto_approve", req.AutoApprove,
	)

	config, err := h.service.SetAutoApprove(r.Context(), application.SetAutoApproveParams{
		Principal: principal,
		Enabled:   req.AutoApprove,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "config update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConfigDTO(config))
}

type configDTO struct {
	AutoApprove bool   `json:"auto_approve"`
	UpdatedAt   string `json:"updated_at"`
}

func toConfigDTO(config application.SystemConfig) configDTO {
	return configDTO{
		AutoApprove: config.AutoApprove,
		UpdatedAt:   config.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
