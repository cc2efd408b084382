// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"notedeck/internal/middleware"
	"notedeck/internal/render"
	"notedeck/internal/store"
)

// Notes groups the note CRUD and search handlers. Every handler runs
// behind RequireAuth, so a session is always present in the context.
type Notes struct {
	renderer      *render.Renderer
	noteStore     *store.NoteStore
	categoryStore *store.CategoryStore
}

// NewNotes creates a new Notes handler group.
func NewNotes(renderer *render.Renderer, noteStore *store.NoteStore, categoryStore *store.CategoryStore) *Notes {
	return &Notes{
		renderer:      renderer,
		noteStore:     noteStore,
		categoryStore: categoryStore,
	}
}

// List renders the user's notes together with the create form.
func (h *Notes) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	notes, err := h.noteStore.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list notes failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categories, err := h.categoryStore.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "notes", &render.PageData{
		Title:   "My Notes",
		Section: "notes",
		Data: map[string]any{
			"Notes":      notes,
			"Categories": categories,
		},
	})
}

// Create handles the note creation form.
func (h *Notes) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form, err := ParseNoteForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	errs := form.Validate()
	categoryID, catErr := parseCategoryID(form.CategoryID)
	if catErr != nil {
		errs = append(errs, FieldError{"category_id", "Choose a valid category."})
	}
	if len(errs) > 0 {
		h.renderList(w, r, sess.UserID, form, errs)
		return
	}

	in := store.NoteInput{
		Title:      form.Title,
		Content:    form.Content,
		CategoryID: categoryID,
	}
	if len(form.ImageData) > 0 {
		in.Image = &store.Upload{Name: form.ImageName, Data: form.ImageData}
	}

	_, err = h.noteStore.Create(r.Context(), sess.UserID, in)
	if err == store.ErrInvalidCategory {
		h.renderList(w, r, sess.UserID, form, Errors{{Field: "category_id", Message: "Choose a valid category."}})
		return
	}
	if err != nil {
		slog.Error("create note failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// renderList re-renders the notes page with form values and errors.
func (h *Notes) renderList(w http.ResponseWriter, r *http.Request, userID uuid.UUID, form NoteForm, errs Errors) {
	notes, _ := h.noteStore.ListForUser(r.Context(), userID)
	categories, _ := h.categoryStore.ListForUser(r.Context(), userID)
	h.renderer.Page(w, r, "notes", &render.PageData{
		Title:   "My Notes",
		Section: "notes",
		Data: map[string]any{
			"Notes":      notes,
			"Categories": categories,
			"Form":       form,
			"Errors":     errs,
		},
	})
}

// EditPage renders the edit form pre-filled with the note's current
// values. A note the user doesn't own redirects to the list, exactly
// like a missing one.
func (h *Notes) EditPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	note, err := h.noteStore.Get(r.Context(), id, sess.UserID)
	if err == store.ErrNotFound {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("get note failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories, err := h.categoryStore.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "note_edit", &render.PageData{
		Title:   "Edit Note",
		Section: "notes",
		Data: map[string]any{
			"Note":       note,
			"Categories": categories,
		},
	})
}

// EditSubmit applies the edit form. Replacing the image writes the new
// blob, updates the row, and reclaims the previous blob if this note
// was its last reference.
func (h *Notes) EditSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	form, err := ParseNoteForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	errs := form.Validate()
	categoryID, catErr := parseCategoryID(form.CategoryID)
	if catErr != nil {
		errs = append(errs, FieldError{"category_id", "Choose a valid category."})
	}
	if len(errs) > 0 {
		h.renderEdit(w, r, sess.UserID, id, form, errs)
		return
	}

	in := store.NoteInput{
		Title:      form.Title,
		Content:    form.Content,
		CategoryID: categoryID,
	}
	if len(form.ImageData) > 0 {
		in.Image = &store.Upload{Name: form.ImageName, Data: form.ImageData}
	}

	_, err = h.noteStore.Update(r.Context(), id, sess.UserID, in)
	if err == store.ErrNotFound {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	if err == store.ErrInvalidCategory {
		h.renderEdit(w, r, sess.UserID, id, form, Errors{{Field: "category_id", Message: "Choose a valid category."}})
		return
	}
	if err != nil {
		slog.Error("update note failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// renderEdit re-renders the edit page with form values and errors.
func (h *Notes) renderEdit(w http.ResponseWriter, r *http.Request, userID, noteID uuid.UUID, form NoteForm, errs Errors) {
	note, err := h.noteStore.Get(r.Context(), noteID, userID)
	if err != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	categories, _ := h.categoryStore.ListForUser(r.Context(), userID)
	h.renderer.Page(w, r, "note_edit", &render.PageData{
		Title:   "Edit Note",
		Section: "notes",
		Data: map[string]any{
			"Note":       note,
			"Categories": categories,
			"Form":       form,
			"Errors":     errs,
		},
	})
}

// Delete removes a note and reclaims its image blob when unreferenced.
func (h *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	err = h.noteStore.Delete(r.Context(), id, sess.UserID)
	if err != nil && err != store.ErrNotFound {
		slog.Error("delete note failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// Search renders the user's notes whose title contains the query.
// An empty query lists everything.
func (h *Notes) Search(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	query := r.URL.Query().Get("q")

	notes, err := h.noteStore.Search(r.Context(), sess.UserID, query)
	if err != nil {
		slog.Error("search notes failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "search", &render.PageData{
		Title:   "Search Notes",
		Section: "notes",
		Data: map[string]any{
			"Notes": notes,
			"Query": query,
		},
	})
}

// parseCategoryID converts the category form value: empty means "no
// category", anything else must be a valid UUID.
func parseCategoryID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
