// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	minUsernameLen = 4
	maxUsernameLen = 20
	minPasswordLen = 4
	maxPasswordLen = 20
	maxTitleLen    = 100
	maxContentLen  = 5000
	maxCatNameLen  = 50

	// maxUploadSize is the maximum allowed image upload size (10 MB).
	maxUploadSize = 10 << 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// FieldError describes a validation failure on a single form field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the list of field errors a form's Validate returns.
// A nil/empty list means the form is valid.
type Errors []FieldError

// Has reports whether a given field failed validation.
func (e Errors) Has(field string) bool {
	return e.For(field) != ""
}

// For returns the message for a field, or "" if the field is valid.
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// RegisterForm carries the registration inputs.
type RegisterForm struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// ParseRegisterForm extracts registration fields from the request.
func ParseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
}

// Validate checks the registration inputs. Pure: no I/O, no state.
func (f RegisterForm) Validate() Errors {
	var errs Errors
	switch {
	case f.Username == "":
		errs = append(errs, FieldError{"username", "Username is required."})
	case utf8.RuneCountInString(f.Username) < minUsernameLen || utf8.RuneCountInString(f.Username) > maxUsernameLen:
		errs = append(errs, FieldError{"username", "Username must be between 4 and 20 characters long."})
	case !usernamePattern.MatchString(f.Username):
		errs = append(errs, FieldError{"username", "Username must contain only letters, numbers, or underscores."})
	}
	switch {
	case f.Password == "":
		errs = append(errs, FieldError{"password", "Password is required."})
	case len(f.Password) < minPasswordLen || len(f.Password) > maxPasswordLen:
		errs = append(errs, FieldError{"password", "Password must be between 4 and 20 characters long."})
	}
	if f.Password != f.ConfirmPassword {
		errs = append(errs, FieldError{"confirm_password", "Passwords must match."})
	}
	return errs
}

// LoginForm carries the login inputs.
type LoginForm struct {
	Username string
	Password string
}

// ParseLoginForm extracts login fields from the request.
func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

// Validate checks the login inputs.
func (f LoginForm) Validate() Errors {
	var errs Errors
	if f.Username == "" {
		errs = append(errs, FieldError{"username", "Username is required."})
	}
	if f.Password == "" {
		errs = append(errs, FieldError{"password", "Password is required."})
	}
	return errs
}

// NoteForm carries the note create/edit inputs. Category and image are
// optional; CategoryID stays the raw form value and is resolved by the
// handler.
type NoteForm struct {
	Title      string
	Content    string
	CategoryID string
	ImageName  string
	ImageData  []byte
}

// ParseNoteForm extracts note fields, including an optional multipart
// image upload, from the request.
func ParseNoteForm(r *http.Request) (NoteForm, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return NoteForm{}, err
	}

	f := NoteForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Content:    r.FormValue("content"),
		CategoryID: r.FormValue("category_id"),
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return f, nil
	}
	if err != nil {
		return NoteForm{}, err
	}
	defer file.Close()

	// A submitted file input with an empty name counts as "no image".
	if strings.TrimSpace(header.Filename) == "" {
		return f, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return NoteForm{}, err
	}
	if len(data) > maxUploadSize {
		return NoteForm{}, fmt.Errorf("image exceeds %d bytes", maxUploadSize)
	}
	f.ImageName = header.Filename
	f.ImageData = data
	return f, nil
}

// Validate checks the note inputs.
func (f NoteForm) Validate() Errors {
	var errs Errors
	switch {
	case f.Title == "":
		errs = append(errs, FieldError{"title", "Title is required."})
	case utf8.RuneCountInString(f.Title) > maxTitleLen:
		errs = append(errs, FieldError{"title", "Title must be no more than 100 characters long."})
	}
	switch {
	case strings.TrimSpace(f.Content) == "":
		errs = append(errs, FieldError{"content", "Content is required."})
	case utf8.RuneCountInString(f.Content) > maxContentLen:
		errs = append(errs, FieldError{"content", "Content must be no more than 5000 characters long."})
	}
	if len(f.ImageData) > 0 && !allowedImageExt(f.ImageName) {
		errs = append(errs, FieldError{"image", "Images only (jpg, jpeg, png, gif, webp)."})
	}
	return errs
}

// CategoryForm carries the category create/rename inputs.
type CategoryForm struct {
	Name string
}

// ParseCategoryForm extracts the category name from the request.
func ParseCategoryForm(r *http.Request) CategoryForm {
	return CategoryForm{Name: strings.TrimSpace(r.FormValue("name"))}
}

// Validate checks the category inputs.
func (f CategoryForm) Validate() Errors {
	var errs Errors
	switch {
	case f.Name == "":
		errs = append(errs, FieldError{"name", "Name is required."})
	case utf8.RuneCountInString(f.Name) > maxCatNameLen:
		errs = append(errs, FieldError{"name", "Name must be no more than 50 characters long."})
	}
	return errs
}

// allowedImageExt checks the upload's file extension. The attachment
// manager re-validates by sniffing the actual content.
func allowedImageExt(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
