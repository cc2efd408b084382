// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a titled piece of text owned by exactly one user. It may
// belong to one of the owner's categories and may carry one attached
// image. Image blobs are stored outside the database and identified by
// filename; several notes can reference the same filename, so blob
// removal is gated on a reference count.
type Note struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	UserID        uuid.UUID  `json:"user_id"`
	CategoryID    *uuid.UUID `json:"category_id"`
	ImageFilename *string    `json:"image_filename"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// CategoryName is a virtual field populated by list queries.
	CategoryName *string `json:"category_name,omitempty"`
}

// HasImage returns true if the note has an attached image.
func (n *Note) HasImage() bool {
	return n.ImageFilename != nil && *n.ImageFilename != ""
}
