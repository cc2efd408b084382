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

// NoteStore manages notes and coordinates their image attachments.
// Every method is scoped to the acting user: a note id belonging to a
// different user behaves exactly like a missing one.
type NoteStore struct {
	db          *sql.DB
	attachments *Attachments
}

// NewNoteStore returns a new NoteStore.
func NewNoteStore(db *sql.DB, attachments *Attachments) *NoteStore {
	return &NoteStore{db: db, attachments: attachments}
}

// Upload carries a raw image upload from a form.
type Upload struct {
	Name string
	Data []byte
}

// NoteInput holds the validated fields for creating or editing a note.
// CategoryID nil means "no category"; Image nil means "keep current /
// no image".
type NoteInput struct {
	Title      string
	Content    string
	CategoryID *uuid.UUID
	Image      *Upload
}

const noteColumns = `n.id, n.title, n.content, n.user_id, n.category_id, n.image_filename, n.created_at, n.updated_at`

// scanNote scans a note row from the result set.
func scanNote(scanner interface{ Scan(...any) error }) (*models.Note, error) {
	var n models.Note
	err := scanner.Scan(
		&n.ID, &n.Title, &n.Content, &n.UserID,
		&n.CategoryID, &n.ImageFilename, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// checkCategoryOwner verifies inside tx that a category belongs to the
// user. Returns ErrInvalidCategory otherwise.
func checkCategoryOwner(tx *sql.Tx, categoryID, userID uuid.UUID) error {
	var one int
	err := tx.QueryRow(`
		SELECT 1 FROM categories WHERE id = $1 AND user_id = $2
	`, categoryID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrInvalidCategory
	}
	if err != nil {
		return fmt.Errorf("check category owner: %w", err)
	}
	return nil
}

// Create inserts a new note for the user. An optional category must
// belong to the same user; an optional image is written to the blob
// store before the row commits, so the committed row never points at a
// missing blob.
func (s *NoteStore) Create(ctx context.Context, userID uuid.UUID, in NoteInput) (*models.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create note: begin tx: %w", err)
	}
	defer tx.Rollback()

	if in.CategoryID != nil {
		if err := checkCategoryOwner(tx, *in.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	var filename *string
	if in.Image != nil {
		name, err := s.attachments.Stage(ctx, in.Image.Data, in.Image.Name)
		if err != nil {
			return nil, err
		}
		filename = &name
	}

	row := tx.QueryRow(`
		INSERT INTO notes (title, content, user_id, category_id, image_filename)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bareNoteColumns,
		in.Title, in.Content, userID, in.CategoryID, filename,
	)
	n, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create note: commit: %w", err)
	}
	return n, nil
}

const bareNoteColumns = `id, title, content, user_id, category_id, image_filename, created_at, updated_at`

// ListForUser returns all notes owned by the user in creation order,
// with category names populated.
func (s *NoteStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`, c.name
		FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.user_id = $1
		ORDER BY n.created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

// ListForCategory returns the user's notes inside one category, in
// creation order. The category id is not checked for ownership here —
// the user predicate already restricts results to the caller's notes.
func (s *NoteStore) ListForCategory(ctx context.Context, categoryID, userID uuid.UUID) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`, c.name
		FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.category_id = $1 AND n.user_id = $2
		ORDER BY n.created_at ASC
	`, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes for category: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

// Search returns the user's notes whose title contains the query as a
// case-sensitive substring. An empty query matches every note.
func (s *NoteStore) Search(ctx context.Context, userID uuid.UUID, query string) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`, c.name
		FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.user_id = $1 AND n.title LIKE '%' || $2 || '%'
		ORDER BY n.created_at ASC
	`, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

// collectNotes drains a result set that selects noteColumns plus the
// category name.
func collectNotes(rows *sql.Rows) ([]models.Note, error) {
	var items []models.Note
	for rows.Next() {
		var n models.Note
		err := rows.Scan(
			&n.ID, &n.Title, &n.Content, &n.UserID,
			&n.CategoryID, &n.ImageFilename, &n.CreatedAt, &n.UpdatedAt,
			&n.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// Get retrieves one note if and only if it belongs to the user.
// A note owned by someone else returns ErrNotFound, identical to a
// missing row.
func (s *NoteStore) Get(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bareNoteColumns+` FROM notes WHERE id = $1 AND user_id = $2
	`, id, userID)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// Update edits a note after the same ownership check as Get. When the
// image is replaced, the new blob is written first, the row is updated,
// and only then is the previous filename's reference count evaluated —
// all in one transaction — so the old blob is deleted exactly when no
// other note still uses it.
func (s *NoteStore) Update(ctx context.Context, id, userID uuid.UUID, in NoteInput) (*models.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update note: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the row so concurrent edits of the same note serialize.
	row := tx.QueryRow(`
		SELECT `+bareNoteColumns+` FROM notes WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, id, userID)
	current, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	if in.CategoryID != nil {
		if err := checkCategoryOwner(tx, *in.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	newFilename := current.ImageFilename
	var replacedOld *string
	if in.Image != nil {
		name, err := s.attachments.Stage(ctx, in.Image.Data, in.Image.Name)
		if err != nil {
			return nil, err
		}
		if current.ImageFilename != nil && *current.ImageFilename != name {
			replacedOld = current.ImageFilename
		}
		newFilename = &name
	}

	row = tx.QueryRow(`
		UPDATE notes SET title = $1, content = $2, category_id = $3,
			image_filename = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+bareNoteColumns,
		in.Title, in.Content, in.CategoryID, newFilename, id,
	)
	updated, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	// With this row already rewritten, the count excludes it.
	orphaned := false
	if replacedOld != nil {
		orphaned, err = s.attachments.Release(tx, *replacedOld)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update note: commit: %w", err)
	}

	if orphaned {
		s.attachments.Remove(ctx, *replacedOld)
	}
	return updated, nil
}

// Delete removes a note after the ownership check. The image reference
// is released inside the same transaction; the blob itself is removed
// only after commit, and only if no other note still references it.
func (s *NoteStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete note: begin tx: %w", err)
	}
	defer tx.Rollback()

	var filename *string
	err = tx.QueryRow(`
		DELETE FROM notes WHERE id = $1 AND user_id = $2
		RETURNING image_filename
	`, id, userID).Scan(&filename)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	orphaned := false
	if filename != nil {
		orphaned, err = s.attachments.Release(tx, *filename)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete note: commit: %w", err)
	}

	if orphaned {
		s.attachments.Remove(ctx, *filename)
	}
	return nil
}

// OwnsImage reports whether at least one of the user's notes references
// the filename. The upload-serving endpoint uses this so blobs are only
// readable by their owners.
func (s *NoteStore) OwnsImage(ctx context.Context, userID uuid.UUID, filename string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM notes WHERE user_id = $1 AND image_filename = $2 LIMIT 1
	`, userID, filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check image owner: %w", err)
	}
	return true, nil
}
