package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CateringRepository captures the persistence operations needed by the service.
type CateringRepository interface {
	CreateCateringItem(ctx context.Context, item CateringItem) error
	DeleteCateringItem(ctx context.Context, id string) error
	GetCateringItem(ctx context.Context, id string) (CateringItem, error)
	ListCateringItems(ctx context.Context, kind string) ([]CateringItem, error)
	ListCateringItemsByIDs(ctx context.Context, ids []string) ([]CateringItem, error)
}

// CateringService manages the food and snack catalog.
type CateringService struct {
	catering    CateringRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCateringService constructs a catering service with the provided dependencies.
func NewCateringService(catering CateringRepository, idGenerator func() string, now func() time.Time) *CateringService {
	return NewCateringServiceWithLogger(catering, idGenerator, now, nil)
}

// NewCateringServiceWithLogger constructs a catering service with a specified logger.
func NewCateringServiceWithLogger(catering CateringRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CateringService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CateringService{catering: catering, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CateringService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CateringService", operation, attrs...)
}

// CreateCateringItem adds a catalog entry for administrators.
func (s *CateringService) CreateCateringItem(ctx context.Context, params CreateCateringItemParams) (item CateringItem, err error) {
	if s == nil {
		err = fmt.Errorf("CateringService is nil")
		return
	}
	if s.catering == nil {
		err = fmt.Errorf("catering repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCateringItem",
		"principal_id", params.Principal.UserID,
		"kind", params.Input.Kind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create catering item", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("item_id", item.ID).InfoContext(ctx, "catering item created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if params.Input.Kind != CateringKindFood && params.Input.Kind != CateringKindSnack {
		vErr.add("kind", "kind must be FOOD or SNACK")
	}
	if strings.TrimSpace(params.Input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	item = CateringItem{
		ID:        s.idGenerator(),
		Kind:      params.Input.Kind,
		Name:      strings.TrimSpace(params.Input.Name),
		CreatedAt: s.now(),
	}

	if err = s.catering.CreateCateringItem(ctx, item); err != nil {
		item = CateringItem{}
		err = mapRepoError(err)
		return
	}

	return
}

// DeleteCateringItem removes a catalog entry for administrators.
// Existing reservations keep their name snapshots.
func (s *CateringService) DeleteCateringItem(ctx context.Context, params DeleteCateringItemParams) (err error) {
	if s == nil {
		return fmt.Errorf("CateringService is nil")
	}
	if s.catering == nil {
		return fmt.Errorf("catering repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteCateringItem",
		"principal_id", params.Principal.UserID,
		"item_id", params.ItemID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete catering item", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "catering item deleted")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.catering.DeleteCateringItem(ctx, params.ItemID); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListCateringItems returns the catalog, optionally narrowed to one kind.
func (s *CateringService) ListCateringItems(ctx context.Context, params ListCateringItemsParams) (items []CateringItem, err error) {
	if s == nil {
		err = fmt.Errorf("CateringService is nil")
		return
	}
	if s.catering == nil {
		err = fmt.Errorf("catering repository not configured")
		return
	}

	kind := params.Kind
	if kind != "" && kind != CateringKindFood && kind != CateringKindSnack {
		vErr := &ValidationError{}
		vErr.add("kind", "kind must be FOOD or SNACK")
		err = vErr
		return
	}

	items, err = s.catering.ListCateringItems(ctx, kind)
	if err != nil {
		items = nil
		err = mapRepoError(err)
	}
	return
}
