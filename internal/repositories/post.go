package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

var _ models.Repository[*models.PostRecord] = (*PostRepository)(nil)

// PostRepository implements models.Repository[*models.PostRecord] for post history.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository with the given database connection
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post record and its outcomes with a generated ID
func (r *PostRepository) Create(post *models.PostRecord) error {
	id := shared.GenerateID()
	post.SetID(id)

	if err := post.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO posts (id, mode, status, message, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, post.Mode().String(), string(post.Status()), nullString(post.Message()), post.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		for _, o := range post.Outcomes() {
			_, err := tx.Exec(
				`INSERT INTO post_results (post_id, platform, content, success, error) VALUES (?, ?, ?, ?, ?)`,
				id, o.Platform, o.Content, o.Success, nullString(o.Error),
			)
			if err != nil {
				return fmt.Errorf("failed to insert result for %s: %w", o.Platform, err)
			}
		}
		return nil
	})
}

// Get retrieves a post record by ID
func (r *PostRepository) Get(id string) (*models.PostRecord, error) {
	row := r.db.QueryRow(`SELECT id, mode, status, message, created_at FROM posts WHERE id = ?`, id)

	h, err := scanHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: post %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return r.hydrate(h)
}

// Delete removes a post record and its outcomes
func (r *PostRepository) Delete(id string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM post_results WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete post results: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: post %s", shared.ErrRecordNotFound, id)
		}
		return nil
	})
}

// List returns the most recent post records, newest first. A non-positive limit returns all of them.
func (r *PostRepository) List(limit int) ([]*models.PostRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, mode, status, message, created_at FROM posts ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	var headers []postHeader
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	posts := make([]*models.PostRecord, 0, len(headers))
	for _, h := range headers {
		post, err := r.hydrate(h)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

type postHeader struct {
	id        string
	mode      models.PostMode
	status    models.PostStatus
	message   string
	createdAt time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHeader(s scanner) (postHeader, error) {
	var (
		h       postHeader
		mode    string
		status  string
		message sql.NullString
	)

	if err := s.Scan(&h.id, &mode, &status, &message, &h.createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, err
		}
		return h, fmt.Errorf("failed to scan post: %w", err)
	}

	m, err := models.ParsePostMode(mode)
	if err != nil {
		return h, fmt.Errorf("failed to scan post %s: %w", h.id, err)
	}
	h.mode = m
	h.status = models.PostStatus(status)
	h.message = message.String
	return h, nil
}

// hydrate loads the outcomes of h and builds the record
func (r *PostRepository) hydrate(h postHeader) (*models.PostRecord, error) {
	rows, err := r.db.Query(
		`SELECT platform, content, success, error FROM post_results WHERE post_id = ? ORDER BY platform`,
		h.id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query post results: %w", err)
	}
	defer rows.Close()

	var outcomes []models.PlatformOutcome
	for rows.Next() {
		var (
			o      models.PlatformOutcome
			errMsg sql.NullString
		)
		if err := rows.Scan(&o.Platform, &o.Content, &o.Success, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan post result: %w", err)
		}
		o.Error = errMsg.String
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return models.RestorePostRecord(h.id, h.mode, h.status, h.message, outcomes, h.createdAt), nil
}
