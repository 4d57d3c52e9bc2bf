package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// ErrAccountNotFound возвращается, когда аккаунт не найден в базе.
var ErrAccountNotFound = errors.New("account not found")

// CreateAccount сохраняет новый аккаунт в базу данных и возвращает его UID.
func (s *Storage) CreateAccount(ctx context.Context, acc models.Account) (string, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO accounts (uid, name, email, password_hash, role,
			      subscription_type, subscription_expiry)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		acc.UID, acc.Name, acc.Email, acc.PasswordHash, acc.Role,
		acc.SubscriptionType, acc.SubscriptionExpiry).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetAccountByEmail возвращает аккаунт по нормализованному email.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, role,
			      subscription_type, subscription_expiry
			  FROM accounts
			  WHERE email = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetAccountByUID возвращает аккаунт по его UID.
func (s *Storage) GetAccountByUID(ctx context.Context, uid string) (*models.Account, error) {
	const op = "storage.GetAccountByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, role,
			      subscription_type, subscription_expiry
			  FROM accounts
			  WHERE uid = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, uid), op)
}

// UpdateSubscription меняет тип и срок подписки аккаунта.
// Нулевой expiry означает бессрочную подписку.
func (s *Storage) UpdateSubscription(ctx context.Context, uid, subscriptionType string, expiry *time.Time) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var nullExpiry sql.NullTime
	if expiry != nil {
		nullExpiry = sql.NullTime{Time: *expiry, Valid: true}
	}

	query := `UPDATE accounts
			  SET subscription_type = $1,
			      subscription_expiry = $2
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, subscriptionType, nullExpiry, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// UpdatePasswordHash заменяет хеш пароля аккаунта.
func (s *Storage) UpdatePasswordHash(ctx context.Context, uid, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_hash = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

func (s *Storage) scanAccount(row *sql.Row, op string) (*models.Account, error) {
	acc := &models.Account{}
	var subscriptionExpiry sql.NullTime
	if err := row.Scan(&acc.UID, &acc.Name, &acc.Email, &acc.PasswordHash,
		&acc.Role, &acc.SubscriptionType, &subscriptionExpiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subscriptionExpiry.Valid {
		acc.SubscriptionExpiry = &subscriptionExpiry.Time
	}
	return acc, nil
}
