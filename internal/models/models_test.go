// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserHasTwoFactor(t *testing.T) {
	u := &User{}
	if u.HasTwoFactor() {
		t.Error("new user should not have the second factor")
	}
	u.TOTPEnabled = true
	if !u.HasTwoFactor() {
		t.Error("enabled flag should report the second factor active")
	}
}

func TestUserJSONOmitsSecrets(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	u := &User{Username: "alice", PasswordHash: "$2a$10$hash", TOTPSecret: &secret}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hash") || strings.Contains(out, secret) {
		t.Errorf("serialized user leaks credentials: %s", out)
	}
}

func TestNoteHasImage(t *testing.T) {
	n := &Note{}
	if n.HasImage() {
		t.Error("note without a filename should not report an image")
	}

	empty := ""
	n.ImageFilename = &empty
	if n.HasImage() {
		t.Error("empty filename should not count as an image")
	}

	name := "abc123.png"
	n.ImageFilename = &name
	if !n.HasImage() {
		t.Error("note with a filename should report an image")
	}
}
