package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"notedeck/internal/middleware"
	"notedeck/internal/store"
)

// Uploads serves note image blobs. Access is scoped to the owner: the
// requesting user must hold a session and own at least one note
// referencing the filename, otherwise the blob behaves like it doesn't
// exist.
type Uploads struct {
	noteStore   *store.NoteStore
	attachments *store.Attachments
}

// NewUploads creates a new Uploads handler group.
func NewUploads(noteStore *store.NoteStore, attachments *store.Attachments) *Uploads {
	return &Uploads{noteStore: noteStore, attachments: attachments}
}

// Image streams a note image. The thumbnail variant is served when the
// path carries the thumbs/ prefix.
func (h *Uploads) Image(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "filename"), false)
}

// Thumb streams a note image's thumbnail, falling back to the original
// if no thumbnail was generated.
func (h *Uploads) Thumb(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "filename"), true)
}

func (h *Uploads) serve(w http.ResponseWriter, r *http.Request, filename string, thumb bool) {
	sess := middleware.SessionFromCtx(r.Context())

	if filename == "" || strings.ContainsAny(filename, "/\\") {
		http.NotFound(w, r)
		return
	}

	// Ownership gate: the blob is only visible to a user whose notes
	// reference it.
	owns, err := h.noteStore.OwnsImage(r.Context(), sess.UserID, filename)
	if err != nil {
		slog.Error("image ownership check failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !owns {
		http.NotFound(w, r)
		return
	}

	key := filename
	if thumb {
		key = store.ThumbName(filename)
	}

	data, err := h.attachments.Read(r.Context(), key)
	if err != nil && thumb {
		// No thumbnail for small images; serve the original.
		data, err = h.attachments.Read(r.Context(), filename)
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}
