// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"strings"
	"testing"
)

func TestUserCreateAndFind(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u := createTestUser(t, db)

	found, err := users.FindByUsername(u.Username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if found == nil || found.ID != u.ID {
		t.Fatalf("FindByUsername returned wrong user: %+v", found)
	}

	byID, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Username != u.Username {
		t.Fatalf("FindByID returned wrong user: %+v", byID)
	}
}

func TestUserFindMissing(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u, err := users.FindByUsername("no_such_user_xyz")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for a missing user, got %+v", u)
	}
}

func TestUserUsernameCaseSensitive(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u := createTestUser(t, db)

	// Exact-match lookup: a different casing is a different username.
	other, err := users.FindByUsername(strings.ToUpper(u.Username))
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if other != nil {
		t.Errorf("case-differing lookup should not match: %+v", other)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u := createTestUser(t, db)

	_, err := users.Create(u.Username, "otherpass")
	if err != ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserPasswordHashing(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u := createTestUser(t, db)

	if u.PasswordHash == "secret" || strings.Contains(u.PasswordHash, "secret") {
		t.Error("password stored in plaintext")
	}
	if !users.CheckPassword(u, "secret") {
		t.Error("CheckPassword rejected the correct password")
	}
	if users.CheckPassword(u, "wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestUserTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u := createTestUser(t, db)
	if u.HasTwoFactor() {
		t.Fatal("new user should not have the second factor enabled")
	}

	if err := users.SetTOTPSecret(u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	// Secret stored but not yet verified: still not active.
	reloaded, _ := users.FindByID(u.ID)
	if reloaded.HasTwoFactor() {
		t.Error("unverified secret must not activate the second factor")
	}

	if err := users.EnableTOTP(u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}
	reloaded, _ = users.FindByID(u.ID)
	if !reloaded.HasTwoFactor() {
		t.Error("second factor should be active after EnableTOTP")
	}

	if err := users.DisableTOTP(u.ID); err != nil {
		t.Fatalf("DisableTOTP: %v", err)
	}
	reloaded, _ = users.FindByID(u.ID)
	if reloaded.HasTwoFactor() || reloaded.TOTPSecret != nil {
		t.Error("DisableTOTP should clear both the flag and the secret")
	}
}
