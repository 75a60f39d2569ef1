package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
)

var (
	errBadRequestBody        = errors.New("invalid request body")
	errInvalidRoomID         = errors.New("invalid room id")
	errInvalidReservationID  = errors.New("invalid reservation id")
	errInvalidCateringItemID = errors.New("invalid catering item id")
	errInvalidUserID         = errors.New("invalid user id")
	errInvalidDate           = errors.New("date must be formatted as YYYY-MM-DD")
	errMissingSessionToken   = errors.New("session token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors into the wire
// shape. Decision declines carry their reason code so clients can
// branch without parsing messages.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var dErr *application.DecisionError
	if errors.As(err, &dErr) {
		r.writeJSON(ctx, w, decisionStatus(dErr.Reason), errorResponse{
			ErrorCode: string(dErr.Reason),
			Message:   dErr.Message(),
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "Some fields are missing or invalid.",
			Errors:    vErr.FieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "INVALID_CREDENTIALS",
			Message:   "Invalid email or password.",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "SESSION_INVALID",
			Message:   "Your session is no longer valid. Please sign in again.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "You are not allowed to perform this action.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: string(booking.ReasonNotFound),
			Message:   booking.ReasonNotFound.Message(),
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "A record with the same identity already exists.",
		})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "CONFLICT",
			Message:   "The resource still has dependent records.",
		})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: string(booking.ReasonStorageError),
			Message:   booking.ReasonStorageError.Message(),
		})
	}
}

// decisionStatus picks the HTTP status for a decline. Conflicts with
// other reservations map to 409; rule violations on the request itself
// map to 422.
func decisionStatus(reason booking.Reason) int {
	switch reason {
	case booking.ReasonDuplicateRequest,
		booking.ReasonSessionTaken,
		booking.ReasonPartiallyBooked,
		booking.ReasonFullyBooked,
		booking.ReasonAlreadyProcessed,
		booking.ReasonSessionAlreadyApproved:
		return http.StatusConflict
	case booking.ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
