package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thesrcielos/ScoreBoard/internal/config"
	"github.com/thesrcielos/ScoreBoard/internal/player"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if fn, ok := args.Get(0).(func(context.Context, string) *User); ok {
		return fn(ctx, username), args.Error(1)
	}
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type MockPlayerStore struct {
	mock.Mock
}

func (m *MockPlayerStore) GetPlayer(ctx context.Context, id string) (*player.Player, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*player.Player)
	return p, args.Error(1)
}

func (m *MockPlayerStore) CreatePlayer(ctx context.Context, p *player.Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

var testAdmin = config.AdminConfig{Username: "mani", Password: "game@123", Name: "Mani"}

func newTestUserService() (*UserService, *MockUserRepository, *MockPlayerStore) {
	repo := &MockUserRepository{}
	players := &MockPlayerStore{}
	tokens := NewTokenIssuer("test-secret", time.Hour, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(repo, players, tokens, testAdmin, logger), repo, players
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Login(t *testing.T) {
	service, repo, _ := newTestUserService()
	u := &User{ID: "u1", Username: "foo", Password: hash(t, "bar"), Name: "Foo", Role: RolePlayer}
	repo.On("CountUsers", mock.Anything).Return(int64(1), nil)
	repo.On("GetUserByUsername", mock.Anything, "foo").Return(u, nil)

	resp, err := service.Login(context.Background(), LoginRequest{Username: "foo", Password: "bar"})
	require.NoError(t, err)
	assert.Equal(t, u, resp.User)

	claims, err := service.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "foo", claims.Username)
	assert.Equal(t, "Foo", claims.Name)
	assert.False(t, claims.IsAdmin())
	repo.AssertExpectations(t)
}

func TestUserService_Login_Failures(t *testing.T) {
	service, repo, _ := newTestUserService()
	repo.On("CountUsers", mock.Anything).Return(int64(1), nil)
	repo.On("GetUserByUsername", mock.Anything, "foo").
		Return(&User{ID: "u1", Username: "foo", Password: hash(t, "bar")}, nil)
	repo.On("GetUserByUsername", mock.Anything, "nobody").Return(nil, errUserNotFound)
	ctx := context.Background()

	_, err := service.Login(ctx, LoginRequest{Username: "foo"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	_, err = service.Login(ctx, LoginRequest{Username: "foo", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, LoginRequest{Username: "nobody", Password: "bar"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestUserService_Login_SeedsAdmin(t *testing.T) {
	service, repo, players := newTestUserService()
	var seeded *User

	repo.On("CountUsers", mock.Anything).Return(int64(0), nil).Once()
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Username == "mani" && u.Role == RoleAdmin
	})).Run(func(args mock.Arguments) {
		seeded = args.Get(1).(*User)
	}).Return(nil).Once()
	players.On("GetPlayer", mock.Anything, adminID).Return(nil, player.ErrPlayerNotFound).Once()
	players.On("CreatePlayer", mock.Anything, &player.Player{ID: adminID, Name: "Mani", Avatar: player.AdminAvatar}).Return(nil).Once()
	repo.On("GetUserByUsername", mock.Anything, "mani").Return(func(context.Context, string) *User {
		return seeded
	}, nil)

	resp, err := service.Login(context.Background(), LoginRequest{Username: "mani", Password: "game@123"})
	require.NoError(t, err)

	assert.Equal(t, adminID, resp.User.ID)
	assert.True(t, resp.User.IsAdmin())
	assert.NotEqual(t, "game@123", resp.User.Password)
	repo.AssertExpectations(t)
	players.AssertExpectations(t)
}

func TestUserService_Login_SeedFailure(t *testing.T) {
	service, repo, _ := newTestUserService()
	repo.On("CountUsers", mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := service.Login(context.Background(), LoginRequest{Username: "mani", Password: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login failed")
}

func TestUserService_Login_SeedRaceIsTolerated(t *testing.T) {
	service, repo, players := newTestUserService()
	existing := &User{ID: adminID, Username: "mani", Password: hash(t, "game@123"), Name: "Mani", Role: RoleAdmin}

	repo.On("CountUsers", mock.Anything).Return(int64(0), nil).Once()
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(errors.New("UNIQUE constraint failed: users.username")).Once()
	repo.On("GetUser", mock.Anything, adminID).Return(existing, nil).Once()
	players.On("GetPlayer", mock.Anything, adminID).Return(&player.Player{ID: adminID}, nil).Once()
	repo.On("GetUserByUsername", mock.Anything, "mani").Return(existing, nil)

	resp, err := service.Login(context.Background(), LoginRequest{Username: "mani", Password: "game@123"})
	require.NoError(t, err)
	assert.Equal(t, adminID, resp.User.ID)
	repo.AssertExpectations(t)
	players.AssertNotCalled(t, "CreatePlayer", mock.Anything, mock.Anything)
}

func TestUserService_Login_SeedCreateFailure(t *testing.T) {
	service, repo, _ := newTestUserService()
	repo.On("CountUsers", mock.Anything).Return(int64(0), nil)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(errors.New("db down"))
	repo.On("GetUser", mock.Anything, adminID).Return(nil, errUserNotFound)

	_, err := service.Login(context.Background(), LoginRequest{Username: "mani", Password: "game@123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login failed")
}

func TestUserService_Me(t *testing.T) {
	service, repo, _ := newTestUserService()
	repo.On("GetUser", mock.Anything, "u1").Return(&User{ID: "u1", Username: "alice"}, nil)
	repo.On("GetUser", mock.Anything, "u2").Return(nil, errUserNotFound)

	u, err := service.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = service.Me(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_CreateUser(t *testing.T) {
	service, repo, players := newTestUserService()
	repo.On("GetUserByUsername", mock.Anything, "bob").Return(nil, errUserNotFound)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)
	players.On("GetPlayer", mock.Anything, mock.Anything).Return(nil, player.ErrPlayerNotFound)
	players.On("CreatePlayer", mock.Anything, mock.AnythingOfType("*player.Player")).Return(nil)

	u, err := service.CreateUser(context.Background(), CreateUserRequest{Username: " bob ", Password: "pw", Name: "Bob"})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, RolePlayer, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw")))

	created := players.Calls[1].Arguments.Get(1).(*player.Player)
	assert.Equal(t, u.ID, created.ID)
	assert.Equal(t, "Bob", created.Name)
	assert.NotEmpty(t, created.Avatar)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	service, repo, _ := newTestUserService()
	repo.On("GetUserByUsername", mock.Anything, "taken").Return(&User{ID: "u1"}, nil)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, CreateUserRequest{Username: "", Password: "pw"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	_, err = service.CreateUser(ctx, CreateUserRequest{Username: "x", Password: "pw", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.CreateUser(ctx, CreateUserRequest{Username: "taken", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, nil)
	token, err := issuer.Generate(&User{ID: "u1", Username: "admin", Role: RoleAdmin, Name: "Admin"})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	_, err = NewTokenIssuer("other", time.Hour, nil).Parse(token)
	assert.Error(t, err)

	_, err = issuer.Parse("")
	assert.Error(t, err)

	expired := NewTokenIssuer("secret", -time.Minute, nil)
	stale, err := expired.Generate(&User{ID: "u1"})
	require.NoError(t, err)
	_, err = issuer.Parse(stale)
	assert.Error(t, err)
}
