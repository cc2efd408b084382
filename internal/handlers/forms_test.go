// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	. "notedeck/internal/handlers"

	"strings"
	"testing"
)

func TestRegisterFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      RegisterForm
		wantField string // "" means valid
	}{
		{"valid", RegisterForm{"alice_99", "secret", "secret"}, ""},
		{"valid minimal lengths", RegisterForm{"abcd", "1234", "1234"}, ""},
		{"valid maximal lengths", RegisterForm{strings.Repeat("a", 20), strings.Repeat("p", 20), strings.Repeat("p", 20)}, ""},
		{"empty username", RegisterForm{"", "secret", "secret"}, "username"},
		{"username too short", RegisterForm{"abc", "secret", "secret"}, "username"},
		{"username too long", RegisterForm{strings.Repeat("a", 21), "secret", "secret"}, "username"},
		{"username bad chars", RegisterForm{"ali ce", "secret", "secret"}, "username"},
		{"username hyphen", RegisterForm{"ali-ce", "secret", "secret"}, "username"},
		{"empty password", RegisterForm{"alice", "", ""}, "password"},
		{"password too short", RegisterForm{"alice", "abc", "abc"}, "password"},
		{"password too long", RegisterForm{"alice", strings.Repeat("p", 21), strings.Repeat("p", 21)}, "password"},
		{"mismatched confirmation", RegisterForm{"alice", "secret", "secrex"}, "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected valid, got errors: %v", errs)
				}
				return
			}
			if !errs.Has(tt.wantField) {
				t.Errorf("expected error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestRegisterFormUnderscoreAllowed(t *testing.T) {
	f := RegisterForm{"user_name_1", "secret", "secret"}
	if errs := f.Validate(); len(errs) != 0 {
		t.Errorf("underscores should be allowed: %v", errs)
	}
}

func TestLoginFormValidate(t *testing.T) {
	if errs := (LoginForm{"alice", "secret"}).Validate(); len(errs) != 0 {
		t.Errorf("expected valid, got %v", errs)
	}
	if errs := (LoginForm{"", "secret"}).Validate(); !errs.Has("username") {
		t.Errorf("expected username error, got %v", errs)
	}
	if errs := (LoginForm{"alice", ""}).Validate(); !errs.Has("password") {
		t.Errorf("expected password error, got %v", errs)
	}
}

func TestNoteFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      NoteForm
		wantField string
	}{
		{"valid", NoteForm{Title: "Groceries", Content: "milk, eggs"}, ""},
		{"title at limit", NoteForm{Title: strings.Repeat("t", 100), Content: "x"}, ""},
		{"content at limit", NoteForm{Title: "t", Content: strings.Repeat("c", 5000)}, ""},
		{"empty title", NoteForm{Title: "", Content: "x"}, "title"},
		{"title too long", NoteForm{Title: strings.Repeat("t", 101), Content: "x"}, "title"},
		{"empty content", NoteForm{Title: "t", Content: ""}, "content"},
		{"whitespace content", NoteForm{Title: "t", Content: "   "}, "content"},
		{"content too long", NoteForm{Title: "t", Content: strings.Repeat("c", 5001)}, "content"},
		{"bad image extension", NoteForm{Title: "t", Content: "x", ImageName: "evil.exe", ImageData: []byte{1}}, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected valid, got errors: %v", errs)
				}
				return
			}
			if !errs.Has(tt.wantField) {
				t.Errorf("expected error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestNoteFormImageExtensions(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPG", "b.jpeg", "c.png", "d.gif", "e.webp"} {
		f := NoteForm{Title: "t", Content: "x", ImageName: name, ImageData: []byte{1}}
		if errs := f.Validate(); errs.Has("image") {
			t.Errorf("%s: expected accepted, got %v", name, errs)
		}
	}
}

func TestCategoryFormValidate(t *testing.T) {
	if errs := (CategoryForm{"Work"}).Validate(); len(errs) != 0 {
		t.Errorf("expected valid, got %v", errs)
	}
	if errs := (CategoryForm{strings.Repeat("n", 50)}).Validate(); len(errs) != 0 {
		t.Errorf("50 chars should be valid, got %v", errs)
	}
	if errs := (CategoryForm{""}).Validate(); !errs.Has("name") {
		t.Errorf("expected name error, got %v", errs)
	}
	if errs := (CategoryForm{strings.Repeat("n", 51)}).Validate(); !errs.Has("name") {
		t.Errorf("expected name error for 51 chars, got %v", errs)
	}
}

func TestErrorsForMissingField(t *testing.T) {
	errs := Errors{{Field: "title", Message: "Title is required."}}
	if errs.Has("content") {
		t.Error("Has should be false for a field without errors")
	}
	if got := errs.For("content"); got != "" {
		t.Errorf("For should be empty for a field without errors, got %q", got)
	}
}
