package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"instapilot/internal/models"
)

type InstagramAccountRepository interface {
	Create(ctx context.Context, account *models.InstagramAccount) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.InstagramAccount, error)
	GetUserIDByInstagramID(ctx context.Context, instagramID int64) (uuid.UUID, bool, error)
	Update(ctx context.Context, account *models.InstagramAccount) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

type instagramAccountRepository struct {
	db *sql.DB
}

func NewInstagramAccountRepository(db *sql.DB) InstagramAccountRepository {
	return &instagramAccountRepository{db: db}
}

func (r *instagramAccountRepository) Create(ctx context.Context, account *models.InstagramAccount) error {
	existing, err := r.GetByUserID(ctx, account.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrInstagramAccountExists
	}

	query := `
		INSERT INTO instagram_accounts (user_id, instagram_id, access_token)
		VALUES ($1, $2, $3)
	`
	_, err = r.db.ExecContext(ctx, query, account.UserID, account.InstagramID, account.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// GetByUserID returns (nil, nil) when the user has no account on file.
// Absence is not an error here: the publisher skips such posts.
func (r *instagramAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.InstagramAccount, error) {
	query := `SELECT user_id, instagram_id, access_token, created_at, updated_at FROM instagram_accounts WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var account models.InstagramAccount
	err := row.Scan(&account.UserID, &account.InstagramID, &account.AccessToken, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &account, nil
}

func (r *instagramAccountRepository) GetUserIDByInstagramID(ctx context.Context, instagramID int64) (uuid.UUID, bool, error) {
	query := `SELECT user_id FROM instagram_accounts WHERE instagram_id = $1`

	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, instagramID).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		slog.Info(err.Error())
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

func (r *instagramAccountRepository) Update(ctx context.Context, account *models.InstagramAccount) error {
	query := `
		UPDATE instagram_accounts
		SET instagram_id = $2, access_token = $3, updated_at = $4
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query, account.UserID, account.InstagramID, account.AccessToken, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected == 0 {
		return ErrInstagramAccountNotFound
	}
	return nil
}

func (r *instagramAccountRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM instagram_accounts WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected == 0 {
		return ErrInstagramAccountNotFound
	}
	return nil
}
