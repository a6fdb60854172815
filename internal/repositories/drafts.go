package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// unifiedScope is the drafts row holding the unified text. Platform identifiers never contain '*'.
const unifiedScope = "*"

// DraftRepository stores the single saved draft set.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save replaces the stored draft set with d
func (r *DraftRepository) Save(d models.DraftSet) error {
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		if err := clearDrafts(tx); err != nil {
			return err
		}

		_, err := tx.Exec(
			`INSERT INTO draft_state (id, mode, platforms) VALUES (1, ?, ?)`,
			d.Mode.String(), strings.Join(d.Platforms, ","),
		)
		if err != nil {
			return fmt.Errorf("failed to save draft state: %w", err)
		}

		insert := func(scope, content string) error {
			_, err := tx.Exec(
				`INSERT INTO drafts (scope, content, updated_at) VALUES (?, ?, ?)`,
				scope, content, updated,
			)
			if err != nil {
				return fmt.Errorf("failed to save draft %s: %w", scope, err)
			}
			return nil
		}

		if err := insert(unifiedScope, d.Unified); err != nil {
			return err
		}
		for platform, content := range d.Drafts {
			if err := insert(platform, content); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored draft set, or [shared.ErrRecordNotFound] when none was saved
func (r *DraftRepository) Load() (*models.DraftSet, error) {
	var mode, platforms string
	err := r.db.QueryRow(`SELECT mode, platforms FROM draft_state WHERE id = 1`).Scan(&mode, &platforms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no saved drafts", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft state: %w", err)
	}

	m, err := models.ParsePostMode(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft state: %w", err)
	}

	d := &models.DraftSet{Mode: m, Drafts: make(map[string]string)}
	if platforms != "" {
		d.Platforms = strings.Split(platforms, ",")
	}

	rows, err := r.db.Query(`SELECT scope, content, updated_at FROM drafts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			scope, content string
			updatedAt      time.Time
		)
		if err := rows.Scan(&scope, &content, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if updatedAt.After(d.UpdatedAt) {
			d.UpdatedAt = updatedAt
		}
		if scope == unifiedScope {
			d.Unified = content
			continue
		}
		d.Drafts[scope] = content
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return d, nil
}

// Clear removes any stored draft set
func (r *DraftRepository) Clear() error {
	return withTx(r.db, clearDrafts)
}

func clearDrafts(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM drafts`); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM draft_state`); err != nil {
		return fmt.Errorf("failed to clear draft state: %w", err)
	}
	return nil
}
