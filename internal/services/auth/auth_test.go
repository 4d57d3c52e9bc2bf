package auth

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

	"github.com/magabrotheeeer/video-access-gateway/internal/events"
	jwtlib "github.com/magabrotheeeer/video-access-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/password"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
	"github.com/magabrotheeeer/video-access-gateway/internal/storage"
)

type AccountRepositoryMock struct {
	mock.Mock
}

func (m *AccountRepositoryMock) CreateAccount(ctx context.Context, acc models.Account) (string, error) {
	args := m.Called(ctx, acc)
	return args.String(0), args.Error(1)
}

func (m *AccountRepositoryMock) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func (m *AccountRepositoryMock) GetAccountByUID(ctx context.Context, uid string) (*models.Account, error) {
	args := m.Called(ctx, uid)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

type EventPublisherMock struct {
	mock.Mock
}

func (m *EventPublisherMock) AccountRegistered(ev events.RegisteredEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(repo AccountRepository, publisher EventPublisher) (*Service, *jwtlib.MakerImpl) {
	maker := jwtlib.NewMaker("test_secret_key", time.Hour)
	return New(repo, maker, publisher, newNoopLogger()), maker
}

func TestService_Register(t *testing.T) {
	repo := new(AccountRepositoryMock)
	publisher := new(EventPublisherMock)
	svc, _ := newTestService(repo, publisher)

	repo.On("GetAccountByEmail", mock.Anything, "new@example.com").
		Return(nil, storage.ErrAccountNotFound).Once()
	repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
		return acc.Email == "new@example.com" &&
			acc.Role == models.RoleUser &&
			acc.SubscriptionType == models.SubscriptionFree &&
			acc.PasswordHash != "" &&
			acc.PasswordHash != "Password1!"
	})).Return("uid-1", nil).Once()
	publisher.On("AccountRegistered", mock.MatchedBy(func(ev events.RegisteredEvent) bool {
		return ev.Email == "new@example.com" && ev.AccountUID != ""
	})).Return(nil).Once()

	acc, err := svc.Register(context.Background(), "New User", "  New@Example.COM ", "Password1!")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", acc.Email)
	assert.NoError(t, password.CompareHash(acc.PasswordHash, "Password1!"))

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestService_Register_EmailTaken(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, _ := newTestService(repo, nil)

	repo.On("GetAccountByEmail", mock.Anything, "taken@example.com").
		Return(&models.Account{UID: "uid-1", Email: "taken@example.com"}, nil).Once()

	_, err := svc.Register(context.Background(), "Name", "taken@example.com", "Password1!")
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

// Сбой хранилища при проверке email не должен приниматься за
// "email свободен": регистрация прерывается с исходной ошибкой.
func TestService_Register_StorageErrorPropagated(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, _ := newTestService(repo, nil)

	storageErr := errors.New("db connection lost")
	repo.On("GetAccountByEmail", mock.Anything, "user@example.com").
		Return(nil, storageErr).Once()

	_, err := svc.Register(context.Background(), "Name", "user@example.com", "Password1!")
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestService_Register_PublishFailureDoesNotFailRegistration(t *testing.T) {
	repo := new(AccountRepositoryMock)
	publisher := new(EventPublisherMock)
	svc, _ := newTestService(repo, publisher)

	repo.On("GetAccountByEmail", mock.Anything, mock.Anything).
		Return(nil, storage.ErrAccountNotFound).Once()
	repo.On("CreateAccount", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
	publisher.On("AccountRegistered", mock.Anything).Return(errors.New("amqp down")).Once()

	_, err := svc.Register(context.Background(), "Name", "user@example.com", "Password1!")
	assert.NoError(t, err)
}

func storedAccount(t *testing.T, rawPassword string) *models.Account {
	t.Helper()
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)
	return &models.Account{
		UID:              "uid-1",
		Name:             "Test User",
		Email:            "user@example.com",
		PasswordHash:     hash,
		Role:             models.RolePremium,
		SubscriptionType: models.SubscriptionPremium,
	}
}

// Выпущенный при логине токен должен раскрываться валидатором в ту же
// идентичность и роль, что хранятся в аккаунте.
func TestService_LoginThenValidate(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, maker := newTestService(repo, nil)

	acc := storedAccount(t, "Password1!")
	repo.On("GetAccountByEmail", mock.Anything, "user@example.com").Return(acc, nil).Once()

	token, expiresAt, got, err := svc.Login(context.Background(), "user@example.com", "Password1!")
	require.NoError(t, err)
	assert.Equal(t, acc.UID, got.UID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Second)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, acc.UID, claims.Subject)
	assert.Equal(t, acc.Email, claims.Email)
	assert.Equal(t, acc.Role, claims.Role)
}

// Сообщение об ошибке не должно выдавать, существует ли email.
func TestService_Login_UniformFailureMessage(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, _ := newTestService(repo, nil)

	acc := storedAccount(t, "Password1!")
	repo.On("GetAccountByEmail", mock.Anything, "user@example.com").Return(acc, nil).Once()
	repo.On("GetAccountByEmail", mock.Anything, "ghost@example.com").
		Return(nil, storage.ErrAccountNotFound).Once()

	_, _, _, errWrongPassword := svc.Login(context.Background(), "user@example.com", "WrongPassword1!")
	_, _, _, errUnknownEmail := svc.Login(context.Background(), "ghost@example.com", "WrongPassword1!")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)
	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestService_Refresh(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, _ := newTestService(repo, nil)

	t.Run("valid token with seconds remaining gets strictly later expiry", func(t *testing.T) {
		shortMaker := jwtlib.NewMaker("test_secret_key", time.Second)
		shortSvc := New(repo, shortMaker, nil, newNoopLogger())

		token, firstExpiry, err := shortMaker.GenerateToken("uid-1", "user@example.com", "user")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		newToken, newExpiry, err := shortSvc.Refresh(context.Background(), token)
		require.NoError(t, err)
		assert.NotEmpty(t, newToken)
		assert.True(t, newExpiry.After(firstExpiry), "refreshed expiry must be strictly later")

		claims, err := shortMaker.ParseToken(newToken)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.Subject)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expiredMaker := jwtlib.NewMaker("test_secret_key", -time.Hour)
		token, _, err := expiredMaker.GenerateToken("uid-1", "user@example.com", "user")
		require.NoError(t, err)

		expiredSvc := New(repo, jwtlib.NewMaker("test_secret_key", time.Hour), nil, newNoopLogger())
		_, _, err = expiredSvc.Refresh(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, _, err := svc.Refresh(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Me(t *testing.T) {
	repo := new(AccountRepositoryMock)
	svc, _ := newTestService(repo, nil)

	acc := storedAccount(t, "Password1!")
	repo.On("GetAccountByUID", mock.Anything, "uid-1").Return(acc, nil).Once()

	got, err := svc.Me(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, acc.Email, got.Email)
}
