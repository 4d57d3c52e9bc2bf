// Package auth содержит бизнес-логику регистрации, входа и продления
// сессионных токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/video-access-gateway/internal/events"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/password"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
	"github.com/magabrotheeeer/video-access-gateway/internal/storage"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль,
// а также при попытке продлить невалидный или просроченный токен.
// Текст одинаков для несуществующего email и неверного пароля.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken возвращается при регистрации на уже занятый email.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository описывает контракт для работы с аккаунтами в базе данных.
type AccountRepository interface {
	// CreateAccount сохраняет новый аккаунт и возвращает его UID.
	CreateAccount(ctx context.Context, acc models.Account) (string, error)

	// GetAccountByEmail возвращает аккаунт по нормализованному email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByUID возвращает аккаунт по его UID.
	GetAccountByUID(ctx context.Context, uid string) (*models.Account, error)
}

// EventPublisher публикует события жизненного цикла аккаунтов.
type EventPublisher interface {
	AccountRegistered(ev events.RegisteredEvent) error
}

// Service отвечает за регистрацию, вход и продление токенов.
// Выпущенные токены нигде не сохраняются: валидность определяется
// только подписью и сроком действия.
type Service struct {
	accounts AccountRepository
	jwtMaker jwt.Maker
	events   EventPublisher // nil, если публикация событий выключена
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(accounts AccountRepository, jwtMaker jwt.Maker, eventPublisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		jwtMaker: jwtMaker,
		events:   eventPublisher,
		log:      log,
	}
}

// NormalizeEmail приводит email к каноничному виду для поиска и хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает новый аккаунт с хэшированием пароля, ролью user
// и подпиской free. Возвращает созданный аккаунт.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*models.Account, error) {
	const op = "services.auth.Register"

	email = NormalizeEmail(email)
	if _, err := s.accounts.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrAccountNotFound) {
		// Сбой хранилища не означает, что email свободен.
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	acc := models.Account{
		UID:              uuid.NewString(),
		Name:             name,
		Email:            email,
		PasswordHash:     hashed,
		Role:             models.RoleUser,
		SubscriptionType: models.SubscriptionFree,
	}
	if _, err := s.accounts.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	if s.events != nil {
		ev := events.RegisteredEvent{
			AccountUID: acc.UID,
			Email:      acc.Email,
			Name:       acc.Name,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.AccountRegistered(ev); err != nil {
			// Событие вторично: регистрация уже состоялась.
			s.log.Warn("failed to publish registered event", slog.String("op", op), sl.Err(err))
		}
	}

	return &acc, nil
}

// Login проверяет пароль и выпускает сессионный токен.
//
// Для несуществующего email выполняется сравнение с DummyHash, чтобы
// время ответа не выдавало, зарегистрирован ли адрес.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, time.Time, *models.Account, error) {
	acc, err := s.accounts.GetAccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		_ = password.CompareHash(password.DummyHash, rawPassword)
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(acc.PasswordHash, rawPassword); err != nil {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.jwtMaker.GenerateToken(acc.UID, acc.Email, acc.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, acc, nil
}

// Refresh выпускает новый токен по ещё действующему текущему токену,
// сохраняя идентичность и роль. Просроченный или невалидный токен
// продлить нельзя.
func (s *Service) Refresh(_ context.Context, rawToken string) (string, time.Time, error) {
	claims, err := s.jwtMaker.ParseToken(rawToken)
	if err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.jwtMaker.GenerateToken(claims.Subject, claims.Email, claims.Role)
}

// Me возвращает аккаунт по UID из проверенного токена.
func (s *Service) Me(ctx context.Context, accountUID string) (*models.Account, error) {
	return s.accounts.GetAccountByUID(ctx, accountUID)
}
