package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/config"
	httptransport "github.com/example/room-reservation/internal/http"
	"github.com/example/room-reservation/internal/logging"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/sqlite"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, 0).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := uuid.NewString
	now := time.Now

	reservationRepo := newReservationRepositoryAdapter(sqlite.NewReservationRepository(storage))
	roomRepo := newRoomRepositoryAdapter(sqlite.NewRoomRepository(storage))
	cateringRepo := newCateringRepositoryAdapter(sqlite.NewCateringRepository(storage))
	configRepo := newConfigRepositoryAdapter(sqlite.NewConfigRepository(storage))
	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(storage))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(storage))

	reservationService := application.NewReservationServiceWithLogger(reservationRepo, roomRepo, cateringRepo, configRepo, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	cateringService := application.NewCateringServiceWithLogger(cateringRepo, idGenerator, now, logger)
	configService := application.NewConfigServiceWithLogger(configRepo, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(userRepo, sessionRepo, tokenGenerator, now, cfg.SessionTTL, logger)

	seeded, err := userService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Error("failed to seed administrator account", "error", err)
		os.Exit(1)
	}
	if seeded {
		logger.Info("seeded administrator account", "email", cfg.AdminEmail)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Catering:     httptransport.NewCateringHandler(cateringService, logger),
		Config:       httptransport.NewConfigHandler(configService, logger),
		SessionGuard: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) InTransaction(ctx context.Context, fn func(tx application.ReservationTx) error) error {
	return a.repo.InTransaction(ctx, func(tx persistence.ReservationTx) error {
		return fn(&reservationTxAdapter{tx: tx})
	})
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]application.Reservation, error) {
	models, err := a.repo.ListForRoomAndDate(ctx, roomID, date, statuses)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context, filter application.ReservationListFilter) ([]application.Reservation, error) {
	models, err := a.repo.ListReservations(ctx, persistence.ReservationFilter{
		RequesterID: filter.RequesterID,
		Status:      filter.Status,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

type reservationTxAdapter struct {
	tx persistence.ReservationTx
}

func (a *reservationTxAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.tx.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationTxAdapter) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]application.Reservation, error) {
	models, err := a.tx.ListForRoomAndDate(ctx, roomID, date, statuses)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *reservationTxAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	stored, err := a.tx.CreateReservation(ctx, toPersistenceReservation(reservation))
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationTxAdapter) UpdateReservationStatus(ctx context.Context, id, status string, rejectionReason *string, updatedAt time.Time) (application.Reservation, error) {
	stored, err := a.tx.UpdateReservationStatus(ctx, id, status, rejectionReason, updatedAt)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) error {
	return a.repo.CreateRoom(ctx, toPersistenceRoom(room))
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) error {
	return a.repo.UpdateRoom(ctx, toPersistenceRoom(room))
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

type cateringRepositoryAdapter struct {
	repo persistence.CateringRepository
}

func newCateringRepositoryAdapter(repo persistence.CateringRepository) *cateringRepositoryAdapter {
	return &cateringRepositoryAdapter{repo: repo}
}

func (a *cateringRepositoryAdapter) CreateCateringItem(ctx context.Context, item application.CateringItem) error {
	return a.repo.CreateCateringItem(ctx, persistence.CateringItem{
		ID:        item.ID,
		Kind:      item.Kind,
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	})
}

func (a *cateringRepositoryAdapter) DeleteCateringItem(ctx context.Context, id string) error {
	return a.repo.DeleteCateringItem(ctx, id)
}

func (a *cateringRepositoryAdapter) GetCateringItem(ctx context.Context, id string) (application.CateringItem, error) {
	stored, err := a.repo.GetCateringItem(ctx, id)
	if err != nil {
		return application.CateringItem{}, err
	}
	return toApplicationCateringItem(stored), nil
}

func (a *cateringRepositoryAdapter) ListCateringItems(ctx context.Context, kind string) ([]application.CateringItem, error) {
	models, err := a.repo.ListCateringItems(ctx, kind)
	if err != nil {
		return nil, err
	}
	return toApplicationCateringItems(models), nil
}

func (a *cateringRepositoryAdapter) ListCateringItemsByIDs(ctx context.Context, ids []string) ([]application.CateringItem, error) {
	models, err := a.repo.ListCateringItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toApplicationCateringItems(models), nil
}

type configRepositoryAdapter struct {
	repo persistence.ConfigRepository
}

func newConfigRepositoryAdapter(repo persistence.ConfigRepository) *configRepositoryAdapter {
	return &configRepositoryAdapter{repo: repo}
}

func (a *configRepositoryAdapter) GetSystemConfig(ctx context.Context) (application.SystemConfig, error) {
	stored, err := a.repo.GetSystemConfig(ctx)
	if err != nil {
		return application.SystemConfig{}, err
	}
	return application.SystemConfig{AutoApprove: stored.AutoApprove, UpdatedAt: stored.UpdatedAt}, nil
}

func (a *configRepositoryAdapter) SetAutoApprove(ctx context.Context, enabled bool, updatedAt time.Time) (application.SystemConfig, error) {
	stored, err := a.repo.SetAutoApprove(ctx, enabled, updatedAt)
	if err != nil {
		return application.SystemConfig{}, err
	}
	return application.SystemConfig{AutoApprove: stored.AutoApprove, UpdatedAt: stored.UpdatedAt}, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) error {
	return a.repo.CreateUser(ctx, persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		IsAdmin:      user.IsAdmin,
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) CountUsers(ctx context.Context) (int, error) {
	return a.repo.CountUsers(ctx)
}

func (a *userRepositoryAdapter) GetUserCredentials(ctx context.Context, id string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{User: toApplicationUser(stored), PasswordHash: stored.PasswordHash}, nil
}

func (a *userRepositoryAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{User: toApplicationUser(stored), PasswordHash: stored.PasswordHash}, nil
}

func (a *userRepositoryAdapter) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	return a.repo.UpdatePasswordHash(ctx, userID, passwordHash, updatedAt)
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:              model.ID,
		RoomID:          model.RoomID,
		RequesterID:     model.RequesterID,
		Date:            model.Date,
		Partition:       booking.Partition(model.Partition),
		LetterNumber:    model.LetterNumber,
		Agenda:          model.Agenda,
		Description:     model.Description,
		MeetingType:     model.MeetingType,
		Note:            model.Note,
		DocumentURL:     model.DocumentURL,
		FoodNames:       model.FoodNames,
		SnackNames:      model.SnackNames,
		Status:          model.Status,
		RejectionReason: model.RejectionReason,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toApplicationReservations(models []persistence.Reservation) []application.Reservation {
	if len(models) == 0 {
		return nil
	}
	out := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		out = append(out, toApplicationReservation(model))
	}
	return out
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:              reservation.ID,
		RoomID:          reservation.RoomID,
		RequesterID:     reservation.RequesterID,
		Date:            reservation.Date,
		Partition:       string(reservation.Partition),
		LetterNumber:    reservation.LetterNumber,
		Agenda:          reservation.Agenda,
		Description:     reservation.Description,
		MeetingType:     reservation.MeetingType,
		Note:            reservation.Note,
		DocumentURL:     reservation.DocumentURL,
		FoodNames:       reservation.FoodNames,
		SnackNames:      reservation.SnackNames,
		Status:          reservation.Status,
		RejectionReason: reservation.RejectionReason,
		CreatedAt:       reservation.CreatedAt,
		UpdatedAt:       reservation.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Capacity:    model.Capacity,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Capacity:    room.Capacity,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

func toApplicationCateringItem(model persistence.CateringItem) application.CateringItem {
	return application.CateringItem{
		ID:        model.ID,
		Kind:      model.Kind,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationCateringItems(models []persistence.CateringItem) []application.CateringItem {
	if len(models) == 0 {
		return nil
	}
	out := make([]application.CateringItem, 0, len(models))
	for _, model := range models {
		out = append(out, toApplicationCateringItem(model))
	}
	return out
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		RevokedAt: model.RevokedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}
