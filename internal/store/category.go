// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"notedeck/internal/models"
)

// CategoryStore manages a user's categories. Deleting a category
// cascades into its notes and their image blobs.
type CategoryStore struct {
	db          *sql.DB
	attachments *Attachments
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB, attachments *Attachments) *CategoryStore {
	return &CategoryStore{db: db, attachments: attachments}
}

const categoryColumns = `id, name, user_id, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category owned by the user. Names are not
// required to be unique.
func (s *CategoryStore) Create(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, user_id)
		VALUES ($1, $2)
		RETURNING `+categoryColumns,
		name, userID,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// ListForUser returns all categories owned by the user in creation
// order, with note counts.
func (s *CategoryStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.user_id, c.created_at, c.updated_at,
		       COUNT(n.id) AS note_count
		FROM categories c
		LEFT JOIN notes n ON n.category_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt, &c.NoteCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Get retrieves one category if and only if it belongs to the user.
// Ownership mismatch is indistinguishable from a missing row.
func (s *CategoryStore) Get(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2
	`, id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Rename overwrites a category's name after the ownership check.
func (s *CategoryStore) Rename(ctx context.Context, id, userID uuid.UUID, name string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, name, id, userID)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category, every note inside it, and every image blob
// that becomes unreferenced — all row deletions in one transaction.
// Reference counts are evaluated after the notes are deleted within the
// transaction, so an image shared by two notes in the same category is
// correctly reclaimed, while an image still referenced by a note outside
// the category survives. Blob deletions run after commit.
func (s *CategoryStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete category: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Ownership check, locking the category row.
	var one int
	err = tx.QueryRow(`
		SELECT 1 FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, id, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	// Delete the notes, collecting the distinct filenames they referenced.
	rows, err := tx.Query(`
		DELETE FROM notes WHERE category_id = $1
		RETURNING image_filename
	`, id)
	if err != nil {
		return fmt.Errorf("delete category notes: %w", err)
	}
	seen := map[string]bool{}
	var filenames []string
	for rows.Next() {
		var fn *string
		if err := rows.Scan(&fn); err != nil {
			rows.Close()
			return fmt.Errorf("delete category notes: %w", err)
		}
		if fn != nil && !seen[*fn] {
			seen[*fn] = true
			filenames = append(filenames, *fn)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete category notes: %w", err)
	}

	// With the category's notes gone from this transaction's view, a
	// zero count means no note anywhere still uses the blob.
	var orphans []string
	for _, fn := range filenames {
		orphaned, err := s.attachments.Release(tx, fn)
		if err != nil {
			return err
		}
		if orphaned {
			orphans = append(orphans, fn)
		}
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete category: commit: %w", err)
	}

	for _, fn := range orphans {
		s.attachments.Remove(ctx, fn)
	}
	return nil
}
