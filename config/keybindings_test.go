package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateModifiers(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		valid     bool
		warns     bool
	}{
		{"defaults", "alt", "alt+shift", true, false},
		{"empty primary", "", "alt+shift", false, false},
		{"empty secondary", "alt", "", false, false},
		{"bare shift primary", "shift", "alt+shift", false, false},
		{"bare shift secondary", "alt", "shift", false, false},
		{"ctrl warns but passes", "ctrl", "ctrl+shift", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := &KeyBindingsConfig{
				Modifiers: ModifierConfig{Primary: tt.primary, Secondary: tt.secondary},
			}
			ok, warning := kb.Validate()
			if ok != tt.valid {
				t.Errorf("expected valid=%v, got %v (%q)", tt.valid, ok, warning)
			}
			if tt.warns && warning == "" {
				t.Error("expected a warning message")
			}
		})
	}
}

func TestLoadKeybindingsRejectsBareShift(t *testing.T) {
	dataDir := t.TempDir()
	content := "[modifiers]\nprimary = \"shift\"\nsecondary = \"alt+shift\"\n"
	if err := os.WriteFile(filepath.Join(dataDir, "keybindings.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadKeybindings(dataDir); err == nil {
		t.Fatal("expected bare shift modifier to be rejected")
	}
}

func TestLoadKeybindingsFillsMissingModifiers(t *testing.T) {
	dataDir := t.TempDir()
	content := "[actions]\nquit = \"ctrl+shift+q\"\n"
	if err := os.WriteFile(filepath.Join(dataDir, "keybindings.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if kb.Primary() != "alt" || kb.Secondary() != "alt+shift" {
		t.Errorf("expected default modifiers filled in, got %q/%q", kb.Primary(), kb.Secondary())
	}
	if got := kb.GetActionKey("quit"); got != "ctrl+shift+q" {
		t.Errorf("expected action override honored, got %q", got)
	}
}
