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

// Categories groups the category handlers. Every handler runs behind
// RequireAuth.
type Categories struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	noteStore     *store.NoteStore
}

// NewCategories creates a new Categories handler group.
func NewCategories(renderer *render.Renderer, categoryStore *store.CategoryStore, noteStore *store.NoteStore) *Categories {
	return &Categories{
		renderer:      renderer,
		categoryStore: categoryStore,
		noteStore:     noteStore,
	}
}

// List renders the user's categories together with the create form.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	categories, err := h.categoryStore.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "My Categories",
		Section: "categories",
		Data:    map[string]any{"Categories": categories},
	})
}

// Create handles the category creation form.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form := ParseCategoryForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		categories, _ := h.categoryStore.ListForUser(r.Context(), sess.UserID)
		h.renderer.Page(w, r, "categories", &render.PageData{
			Title:   "My Categories",
			Section: "categories",
			Data: map[string]any{
				"Categories": categories,
				"Form":       form,
				"Errors":     errs,
			},
		})
		return
	}

	if _, err := h.categoryStore.Create(r.Context(), sess.UserID, form.Name); err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// Notes renders the user's notes inside one category.
func (h *Categories) Notes(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	category, err := h.categoryStore.Get(r.Context(), id, sess.UserID)
	if err == store.ErrNotFound {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("get category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	notes, err := h.noteStore.ListForCategory(r.Context(), id, sess.UserID)
	if err != nil {
		slog.Error("list category notes failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "category_notes", &render.PageData{
		Title:   category.Name,
		Section: "categories",
		Data: map[string]any{
			"Category": category,
			"Notes":    notes,
		},
	})
}

// EditPage renders the rename form pre-filled with the current name.
func (h *Categories) EditPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	category, err := h.categoryStore.Get(r.Context(), id, sess.UserID)
	if err == store.ErrNotFound {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("get category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "category_edit", &render.PageData{
		Title:   "Edit Category",
		Section: "categories",
		Data:    map[string]any{"Category": category},
	})
}

// EditSubmit renames a category. Not-owned behaves like missing: a
// silent redirect, no error detail.
func (h *Categories) EditSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	form := ParseCategoryForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		category, err := h.categoryStore.Get(r.Context(), id, sess.UserID)
		if err != nil {
			http.Redirect(w, r, "/categories", http.StatusSeeOther)
			return
		}
		h.renderer.Page(w, r, "category_edit", &render.PageData{
			Title:   "Edit Category",
			Section: "categories",
			Data: map[string]any{
				"Category": category,
				"Form":     form,
				"Errors":   errs,
			},
		})
		return
	}

	err = h.categoryStore.Rename(r.Context(), id, sess.UserID, form.Name)
	if err != nil && err != store.ErrNotFound {
		slog.Error("rename category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// Delete removes a category with its notes and any image blobs that
// become unreferenced.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	err = h.categoryStore.Delete(r.Context(), id, sess.UserID)
	if err != nil && err != store.ErrNotFound {
		slog.Error("delete category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}
