package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/application"
)

type cateringService interface {
	CreateCateringItem(ctx context.Context, params application.CreateCateringItemParams) (application.CateringItem, error)
	DeleteCateringItem(ctx context.Context, params application.DeleteCateringItemParams) error
	ListCateringItems(ctx context.Context, params application.ListCateringItemsParams) ([]application.CateringItem, error)
}

// CateringHandler serves the food and snack catalog.
type CateringHandler struct {
	service   cateringService
	responder responder
	logger    *slog.Logger
}

// NewCateringHandler constructs a catering catalog handler.
func NewCateringHandler(service cateringService, logger *slog.Logger) *CateringHandler {
	base := defaultLogger(logger)
	return &CateringHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CateringHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CateringHandler", operation, attrs...)
}

type cateringItemRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Create adds a catalog entry.
func (h *CateringHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req cateringItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode catering item request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create",
		"principal_id", principal.UserID,
		"kind", req.Kind,
	)

	item, err := h.service.CreateCateringItem(r.Context(), application.CreateCateringItemParams{
		Principal: principal,
		Input:     application.CateringItemInput{Kind: req.Kind, Name: req.Name},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "catering item creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("catering_item_id", item.ID).InfoContext(r.Context(), "catering item created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, cateringItemResponse{Item: toCateringItemDTO(item)})
}

// Delete removes a catalog entry.
func (h *CateringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	itemID, ok := CateringItemIDFromContext(r.Context())
	if !ok || strings.TrimSpace(itemID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCateringItemID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete",
		"principal_id", principal.UserID,
		"catering_item_id", itemID,
	)

	if err := h.service.DeleteCateringItem(r.Context(), application.DeleteCateringItemParams{
		Principal: principal,
		ItemID:    itemID,
	}); err != nil {
		logger.ErrorContext(r.Context(), "catering item deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "catering item deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List returns catalog entries, optionally filtered by kind.
func (h *CateringHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	items, err := h.service.ListCateringItems(r.Context(), application.ListCateringItemsParams{
		Principal: principal,
		Kind:      r.URL.Query().Get("kind"),
	})
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "catering item listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCateringItemsResponse{Items: toCateringItemDTOs(items)})
}

type cateringItemDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type cateringItemResponse struct {
	Item cateringItemDTO `json:"item"`
}

type listCateringItemsResponse struct {
	Items []cateringItemDTO `json:"items"`
}

func toCateringItemDTO(item application.CateringItem) cateringItemDTO {
	return cateringItemDTO{
		ID:        item.ID,
		Kind:      item.Kind,
		Name:      item.Name,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCateringItemDTOs(items []application.CateringItem) []cateringItemDTO {
	out := make([]cateringItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toCateringItemDTO(item))
	}
	return out
}
