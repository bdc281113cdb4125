package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"instapilot/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	SetScheduledAt(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error)
	MarkPublished(ctx context.Context, userID uuid.UUID, creationID string, at time.Time) error
	GetDuePosts(ctx context.Context, now time.Time) ([]*models.Post, error)
	Remove(ctx context.Context, userID, postID uuid.UUID) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, creation_id, caption, image_url, scheduled_at, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(dest ...any) error }) (*models.Post, error) {
	var post models.Post
	var scheduledAt, publishedAt sql.NullTime
	err := row.Scan(&post.ID, &post.UserID, &post.CreationID, &post.Caption,
		&post.ImageURL, &scheduledAt, &publishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		ts := scheduledAt.Time
		post.ScheduledAt = &ts
	}
	if publishedAt.Valid {
		ts := publishedAt.Time
		post.PublishedAt = &ts
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, user_id, creation_id, caption, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns

	id := uuid.New()
	row := r.db.QueryRowContext(ctx, query, id, post.UserID, post.CreationID, post.Caption, post.ImageURL)

	created, err := scanPost(row)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return created, nil
}

func (r *postRepository) GetByID(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 AND id = $2`
	row := r.db.QueryRowContext(ctx, query, userID, postID)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPostNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) SetScheduledAt(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error) {
	query := `
		UPDATE posts
		SET scheduled_at = $3, updated_at = $4
		WHERE user_id = $1 AND id = $2
		RETURNING ` + postColumns

	row := r.db.QueryRowContext(ctx, query, userID, postID, at, time.Now())
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPostNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// MarkPublished sets published_at for the post matching (user, creation id).
// COALESCE keeps the first timestamp, so calling it again is a no-op rather
// than an error: the manual publish path and the background sweep may race.
func (r *postRepository) MarkPublished(ctx context.Context, userID uuid.UUID, creationID string, at time.Time) error {
	query := `
		UPDATE posts
		SET published_at = COALESCE(published_at, $3),
			updated_at = $4
		WHERE user_id = $1 AND creation_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, creationID, at, time.Now())
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
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) GetDuePosts(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE scheduled_at IS NOT NULL AND scheduled_at <= $1 AND published_at IS NULL`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	query := `DELETE FROM posts WHERE user_id = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, postID)
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
		return ErrPostNotFound
	}
	return nil
}
