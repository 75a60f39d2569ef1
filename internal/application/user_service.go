package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// UserCredentials pairs an account with its password hash for
// verification flows.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// UserRepository captures the persistence operations needed by the
// user and auth services.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	GetUserCredentials(ctx context.Context, id string) (UserCredentials, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
}

// UserService manages staff accounts.
type UserService struct {
	users        UserRepository
	hashPassword func(password string) (string, error)
	verify       func(hash, password string) error
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: HashPassword,
		verify:       VerifyPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new account for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateUserInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Input.Password)
	if err != nil {
		return
	}

	now := s.now()
	user = User{
		ID:          s.idGenerator(),
		Email:       strings.ToLower(strings.TrimSpace(params.Input.Email)),
		DisplayName: strings.TrimSpace(params.Input.DisplayName),
		IsAdmin:     params.Input.IsAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err = s.users.CreateUser(ctx, user, hash); err != nil {
		user = User{}
		err = mapRepoError(err)
		return
	}

	return
}

// GetUser returns one account. Requesters may only read their own.
func (s *UserService) GetUser(ctx context.Context, principal Principal, id string) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	if !principal.IsAdmin && principal.UserID != id {
		err = ErrUnauthorized
		return
	}

	user, err = s.users.GetUser(ctx, id)
	if err != nil {
		user = User{}
		err = mapRepoError(err)
	}
	return
}

// ListUsers returns all accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	users, err = s.users.ListUsers(ctx)
	if err != nil {
		users = nil
		err = mapRepoError(err)
	}
	return
}

// ChangePassword replaces the caller's own password after verifying
// the current one.
func (s *UserService) ChangePassword(ctx context.Context, params ChangePasswordParams) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "ChangePassword",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change password", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password changed")
	}()

	if strings.TrimSpace(params.Principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}

	if len(params.NewPassword) < minPasswordLength {
		vErr := &ValidationError{}
		vErr.add("new_password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		err = vErr
		return
	}

	var creds UserCredentials
	creds, err = s.users.GetUserCredentials(ctx, params.Principal.UserID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if err = s.verify(creds.PasswordHash, params.CurrentPassword); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var hash string
	hash, err = s.hashPassword(params.NewPassword)
	if err != nil {
		return
	}

	if err = s.users.UpdatePasswordHash(ctx, params.Principal.UserID, hash, s.now()); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// SeedAdmin creates the initial administrator account when the user
// table is empty. It is a no-op once any account exists.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) (seeded bool, err error) {
	if s == nil {
		return false, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return false, fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "SeedAdmin", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed admin", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if seeded {
			logger.InfoContext(ctx, "admin account seeded")
		}
	}()

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.CreateUser(ctx, CreateUserParams{
		Principal: Principal{UserID: "system", IsAdmin: true},
		Input: UserInput{
			Email:       email,
			DisplayName: "Administrator",
			IsAdmin:     true,
			Password:    password,
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

const minPasswordLength = 8

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email is invalid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if len(input.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	return vErr
}
