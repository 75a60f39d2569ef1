package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ConfigRepository captures the persistence operations needed by the service.
type ConfigRepository interface {
	GetSystemConfig(ctx context.Context) (SystemConfig, error)
	SetAutoApprove(ctx context.Context, enabled bool, updatedAt time.Time) (SystemConfig, error)
}

// ConfigService manages the process-wide settings singleton.
type ConfigService struct {
	config ConfigRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewConfigService constructs a config service with the provided dependencies.
func NewConfigService(config ConfigRepository, now func() time.Time) *ConfigService {
	return NewConfigServiceWithLogger(config, now, nil)
}

// NewConfigServiceWithLogger constructs a config service with a specified logger.
func NewConfigServiceWithLogger(config ConfigRepository, now func() time.Time, logger *slog.Logger) *ConfigService {
	if now == nil {
		now = time.Now
	}
	return &ConfigService{config: config, now: now, logger: defaultLogger(logger)}
}

func (s *ConfigService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConfigService", operation, attrs...)
}

// GetSystemConfig returns the settings singleton for administrators.
func (s *ConfigService) GetSystemConfig(ctx context.Context, principal Principal) (config SystemConfig, err error) {
	if s == nil {
		err = fmt.Errorf("ConfigService is nil")
		return
	}
	if s.config == nil {
		err = fmt.Errorf("config repository not configured")
		return
	}

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	config, err = s.config.GetSystemConfig(ctx)
	if err != nil {
		config = SystemConfig{}
		err = mapRepoError(err)
	}
	return
}

// SetAutoApprove flips the auto-approve gate for administrators. The
// gate only affects reservations admitted after the change.
func (s *ConfigService) SetAutoApprove(ctx context.Context, params SetAutoApproveParams) (config SystemConfig, err error) {
	if s == nil {
		err = fmt.Errorf("ConfigService is nil")
		return
	}
	if s.config == nil {
		err = fmt.Errorf("config repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetAutoApprove",
		"principal_id", params.Principal.UserID,
		"enabled", params.Enabled,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update auto approve", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "auto approve updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	config, err = s.config.SetAutoApprove(ctx, params.Enabled, s.now())
	if err != nil {
		config = SystemConfig{}
		err = mapRepoError(err)
	}
	return
}
