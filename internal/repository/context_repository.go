package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"instapilot/internal/models"
)

// ContextRepository manages a per-user singleton text row. The post and
// wiki variants share the implementation and differ only by table.
type ContextRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserContext, error)
	Create(ctx context.Context, userID uuid.UUID, content string) error
	Update(ctx context.Context, userID uuid.UUID, content string) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

type contextRepository struct {
	db    *sql.DB
	table string
}

func NewPostContextRepository(db *sql.DB) ContextRepository {
	return &contextRepository{db: db, table: "post_contexts"}
}

func NewWikiContextRepository(db *sql.DB) ContextRepository {
	return &contextRepository{db: db, table: "wiki_contexts"}
}

// Get returns (nil, nil) when no context is stored for the user.
func (r *contextRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserContext, error) {
	query := fmt.Sprintf(`SELECT user_id, content, created_at, updated_at FROM %s WHERE user_id = $1`, r.table)
	row := r.db.QueryRowContext(ctx, query, userID)

	var uc models.UserContext
	err := row.Scan(&uc.UserID, &uc.Content, &uc.CreatedAt, &uc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &uc, nil
}

func (r *contextRepository) Create(ctx context.Context, userID uuid.UUID, content string) error {
	existing, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrContextExists
	}

	query := fmt.Sprintf(`INSERT INTO %s (user_id, content) VALUES ($1, $2)`, r.table)
	_, err = r.db.ExecContext(ctx, query, userID, content)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contextRepository) Update(ctx context.Context, userID uuid.UUID, content string) error {
	query := fmt.Sprintf(`UPDATE %s SET content = $2, updated_at = $3 WHERE user_id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, userID, content, time.Now())
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
		return ErrContextNotFound
	}
	return nil
}

func (r *contextRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.table)
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
		return ErrContextNotFound
	}
	return nil
}
