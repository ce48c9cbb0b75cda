package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
	"github.com/thesrcielos/ScoreBoard/internal/common/uuid"
	"github.com/thesrcielos/ScoreBoard/internal/config"
	"github.com/thesrcielos/ScoreBoard/internal/player"
)

const adminID = "admin-1"

var (
	ErrCredentialsRequired = apperrors.NewAppError(http.StatusBadRequest, "Username and password required", nil)
	ErrInvalidCredentials  = apperrors.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrUserNotFound        = apperrors.NewAppError(http.StatusNotFound, "User not found", nil)
	ErrUserExists          = apperrors.NewAppError(http.StatusConflict, "User already exists", nil)
	ErrInvalidRole         = apperrors.NewAppError(http.StatusBadRequest, "role must be admin or player", nil)
)

// PlayerStore is the roster every account is mirrored into.
type PlayerStore interface {
	GetPlayer(ctx context.Context, id string) (*player.Player, error)
	CreatePlayer(ctx context.Context, p *player.Player) error
}

type UserService struct {
	repo    UserRepository
	players PlayerStore
	tokens  *TokenIssuer
	admin   config.AdminConfig
	uuid    uuid.UUID
	logger  *slog.Logger
}

func NewUserService(repo UserRepository, players PlayerStore, tokens *TokenIssuer, admin config.AdminConfig, logger *slog.Logger) *UserService {
	return &UserService{
		repo:    repo,
		players: players,
		tokens:  tokens,
		admin:   admin,
		uuid:    uuid.New(),
		logger:  logger,
	}
}

// Login checks the credentials and returns a signed token. The first login
// against an empty users table creates the configured admin account.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}

	if err := s.seedAdmin(ctx); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed", err)
	}

	u, err := s.repo.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, errUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("login_failed", slog.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error creating jwt token", err)
	}
	s.logger.Info("login_succeeded", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return &LoginResponse{Token: token, User: u}, nil
}

func (s *UserService) seedAdmin(ctx context.Context) error {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &User{
		ID:       adminID,
		Username: s.admin.Username,
		Password: string(hashed),
		Name:     s.admin.Name,
		Role:     RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		// a concurrent first login may have seeded it already
		if _, getErr := s.repo.GetUser(ctx, adminID); getErr != nil {
			return err
		}
		s.logger.Info("admin_already_seeded", slog.String("username", admin.Username))
		return s.ensurePlayer(ctx, admin, player.AdminAvatar)
	}
	s.logger.Info("admin_seeded", slog.String("username", admin.Username))
	return s.ensurePlayer(ctx, admin, player.AdminAvatar)
}

func (s *UserService) ensurePlayer(ctx context.Context, u *User, avatar string) error {
	_, err := s.players.GetPlayer(ctx, u.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, player.ErrPlayerNotFound) {
		return err
	}
	err = s.players.CreatePlayer(ctx, &player.Player{ID: u.ID, Name: u.Name, Avatar: avatar})
	if errors.Is(err, player.ErrPlayerExists) {
		return nil
	}
	return err
}

func (s *UserService) Me(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, errUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error loading user", err)
	}
	return u, nil
}

// CreateUser registers an account together with its roster entry.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}
	role := req.Role
	if role == "" {
		role = RolePlayer
	}
	if role != RoleAdmin && role != RolePlayer {
		return nil, ErrInvalidRole
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, errUserNotFound) {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}
	u := &User{
		ID:       s.uuid.NewUUID(),
		Username: username,
		Password: string(hashed),
		Name:     name,
		Role:     role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}
	if err := s.ensurePlayer(ctx, u, player.RandomAvatar()); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error creating player", err)
	}

	s.logger.Info("user_created", slog.String("user_id", u.ID), slog.String("role", string(role)))
	return u, nil
}
