package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTokenStoreSaveLoadDelete(t *testing.T) {
	dataDir := t.TempDir()
	store := NewTokenStore(EncryptionNone, "")

	// Nothing stored yet: an empty token, not an error
	token, err := store.Load(dataDir)
	if err != nil {
		t.Fatalf("load with no token failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token before save, got %q", token)
	}

	if err := store.Save(dataDir, "secret-token"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dataDir, "token"))
	if err != nil {
		t.Fatalf("token file missing after save: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions on token file, got %o", perm)
	}

	token, err = store.Load(dataDir)
	if err != nil {
		t.Fatalf("load after save failed: %v", err)
	}
	if token != "secret-token" {
		t.Errorf("expected saved token back, got %q", token)
	}

	if err := store.Delete(dataDir); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if FileExists(filepath.Join(dataDir, "token")) {
		t.Error("expected token file removed after delete")
	}

	token, err = store.Load(dataDir)
	if err != nil {
		t.Fatalf("load after delete failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token after delete, got %q", token)
	}

	// Deleting again is a no-op, not an error
	if err := store.Delete(dataDir); err != nil {
		t.Errorf("second delete must be a no-op, got %v", err)
	}
}

func TestTokenStoreDefaultsToPlainMethod(t *testing.T) {
	store := NewTokenStore("", "")
	if store.method != EncryptionNone {
		t.Errorf("expected empty method to default to none, got %q", store.method)
	}
}
