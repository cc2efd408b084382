// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"notedeck/internal/storage"
)

const (
	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 100_000_000

	// hashPrefixLen is how many hex characters of the content hash make
	// up a storage filename.
	hashPrefixLen = 16
)

// allowedImageTypes defines the sniffed MIME types accepted for note images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Attachments manages the lifecycle of image blobs shared between notes.
// A blob is identified by its content-derived filename; it lives as long
// as at least one note references that filename. Reference counts are
// evaluated inside the caller's transaction, after the caller has already
// mutated its own rows, so the count the decision is made on stays valid
// through commit. Blob writes happen before the row commit and blob
// deletes after it: a crash can leave an orphaned blob but never a note
// pointing at a missing one.
type Attachments struct {
	blobs storage.BlobStore
}

// NewAttachments creates an attachment manager over the given blob store.
func NewAttachments(blobs storage.BlobStore) *Attachments {
	return &Attachments{blobs: blobs}
}

// DeriveFilename computes the storage filename for an upload: the first
// 16 hex characters of the SHA-256 of the content, plus the lowercased
// extension of the suggested name. Content addressing replaces
// browser-supplied names entirely, so identical uploads collapse to one
// blob and name collisions between different images cannot happen.
func DeriveFilename(data []byte, suggestedName string) string {
	sum := sha256.Sum256(data)
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(suggestedName)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		ext = extensionFromType(http.DetectContentType(data))
	}
	return hex.EncodeToString(sum[:])[:hashPrefixLen] + ext
}

// ThumbName returns the storage key of a blob's thumbnail.
func ThumbName(filename string) string {
	return "thumbs/" + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

// Stage validates an upload and writes its blob (and a best-effort
// thumbnail) to the blob store, returning the derived filename. Stage
// runs BEFORE the note row referencing the filename is committed; if the
// caller's transaction later rolls back, the blob is at worst an
// unreferenced orphan.
func (a *Attachments) Stage(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("attach: empty upload")
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("attach: unsupported content type %q", contentType)
	}

	filename := DeriveFilename(data, suggestedName)

	if err := a.blobs.Put(ctx, filename, data); err != nil {
		return "", fmt.Errorf("attach: store blob: %w", err)
	}

	// Thumbnail generation is best-effort; the note list falls back to
	// the original image when absent.
	if thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth); err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "filename", filename)
	} else if thumb != nil {
		if err := a.blobs.Put(ctx, ThumbName(filename), thumb); err != nil {
			slog.Warn("thumbnail upload failed", "error", err, "filename", filename)
		}
	}

	return filename, nil
}

// Release decides whether a filename's blob became unreferenced. It must
// be called inside the transaction that removed or rewrote the rows that
// used to reference the filename — the count below then excludes those
// rows automatically. The referencing rows are locked (FOR UPDATE) so a
// concurrent request cannot change the count between this check and the
// caller's commit. The caller deletes the blob with Remove AFTER a
// successful commit iff Release reported it orphaned.
func (a *Attachments) Release(tx *sql.Tx, filename string) (bool, error) {
	rows, err := tx.Query(`
		SELECT id FROM notes WHERE image_filename = $1 FOR UPDATE
	`, filename)
	if err != nil {
		return false, fmt.Errorf("attach: count references for %s: %w", filename, err)
	}
	defer rows.Close()

	refs := 0
	for rows.Next() {
		refs++
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("attach: count references for %s: %w", filename, err)
	}

	return refs == 0, nil
}

// Remove deletes a blob and its thumbnail from the blob store. Called
// after the owning transaction committed, for filenames Release reported
// orphaned. Failures are logged, not returned: the row state is already
// durable and a leftover blob is reclaimable by hand.
func (a *Attachments) Remove(ctx context.Context, filename string) {
	if err := a.blobs.Delete(ctx, filename); err != nil {
		slog.Warn("orphaned blob delete failed", "error", err, "filename", filename)
	}
	if err := a.blobs.Delete(ctx, ThumbName(filename)); err != nil {
		slog.Warn("orphaned thumbnail delete failed", "error", err, "filename", filename)
	}
}

// Read streams a blob's bytes for the upload-serving endpoint.
func (a *Attachments) Read(ctx context.Context, filename string) ([]byte, error) {
	return a.blobs.Read(ctx, filename)
}

// generateThumbnail scales an image down to maxWidth, preserving aspect
// ratio, and encodes it as JPEG. Returns (nil, nil) when the source is
// already small enough.
func generateThumbnail(src *bytes.Reader, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Check for image bombs.
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	// Skip thumbnail if image is already small enough.
	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	// Seek back to start for full decode.
	if _, err := src.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Calculate thumbnail dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// extensionFromType maps a sniffed MIME type to a file extension.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
