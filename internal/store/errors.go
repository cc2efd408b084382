package store

import "errors"

var (
	// ErrUsernameTaken is returned when registering a username that
	// already exists (case-sensitive exact match).
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotFound is returned when a row does not exist OR belongs to a
	// different user. The two cases are deliberately indistinguishable so
	// callers cannot probe for other users' resources.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCategory is returned when a note references a category
	// that does not belong to the note's owner.
	ErrInvalidCategory = errors.New("category does not belong to user")
)
