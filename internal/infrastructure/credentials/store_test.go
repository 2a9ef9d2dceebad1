package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if store.Exists() {
		t.Fatal("store should not exist before Save")
	}
	if _, err := store.Load(); !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("Load before Save: err = %v, want ErrProfileMissing", err)
	}

	if err := store.Save("sk-or-v1-testkey12345", "hunter22"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists() {
		t.Fatal("store should exist after Save")
	}

	profile, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.APIKey != "sk-or-v1-testkey12345" {
		t.Errorf("APIKey = %q", profile.APIKey)
	}
	if profile.PasswordHash == "" || profile.PasswordSalt == "" {
		t.Error("password hash and salt must be populated")
	}
	if profile.PasswordHash == "hunter22" {
		t.Error("password must not be stored in clear text")
	}
}

func TestPasswordVerifier(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Save("sk-or-v1-testkey12345", "hunter22"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	verifier, err := store.PasswordVerifier()
	if err != nil {
		t.Fatalf("PasswordVerifier: %v", err)
	}
	if !verifier.Verify("hunter22") {
		t.Error("correct password rejected")
	}
	if verifier.Verify("wrong") {
		t.Error("wrong password accepted")
	}
	if verifier.Verify("") {
		t.Error("empty password accepted")
	}
}

func TestUpdateAPIKeyKeepsPassword(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Save("sk-or-v1-old", "hunter22"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.UpdateAPIKey("sk-or-v1-new"); err != nil {
		t.Fatalf("UpdateAPIKey: %v", err)
	}

	profile, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.APIKey != "sk-or-v1-new" {
		t.Errorf("APIKey = %q, want new key", profile.APIKey)
	}

	verifier, err := store.PasswordVerifier()
	if err != nil {
		t.Fatalf("PasswordVerifier: %v", err)
	}
	if !verifier.Verify("hunter22") {
		t.Error("password must survive an API key update")
	}
}

func TestUpdatePasswordRotatesSalt(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Save("sk-or-v1-testkey12345", "oldpassword"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _ := store.Load()

	if err := store.UpdatePassword("newpassword"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	after, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if after.PasswordSalt == before.PasswordSalt {
		t.Error("salt must be regenerated on password change")
	}
	if after.APIKey != before.APIKey {
		t.Error("API key must survive a password change")
	}

	verifier, err := store.PasswordVerifier()
	if err != nil {
		t.Fatalf("PasswordVerifier: %v", err)
	}
	if verifier.Verify("oldpassword") {
		t.Error("old password still accepted")
	}
	if !verifier.Verify("newpassword") {
		t.Error("new password rejected")
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for corrupt profile")
	}

	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`{"api_key":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for incomplete profile")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Save("sk-or-v1-testkey12345", "hunter22"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists() {
		t.Error("profile should be gone after Delete")
	}
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
