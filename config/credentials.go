package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore manages the backend API token, optionally encrypted at rest.
// With EncryptionNone the token lives in <data_dir>/token (0600, plain text);
// with EncryptionSSHKey it lives in <data_dir>/token.enc (AES-256-GCM).
type TokenStore struct {
	method     EncryptionMethod
	sshKeyPath string
	passphrase string
	encManager *EncryptionManager
}

// NewTokenStore creates a token store for the configured encryption method
func NewTokenStore(method EncryptionMethod, sshKeyPath string) *TokenStore {
	if method == "" {
		method = EncryptionNone
	}
	return &TokenStore{
		method:     method,
		sshKeyPath: sshKeyPath,
	}
}

// SetPassphrase sets the passphrase for decrypting the SSH key
func (t *TokenStore) SetPassphrase(passphrase string) {
	t.passphrase = passphrase
	if t.encManager != nil {
		t.encManager.SetPassphrase(passphrase)
	}
}

func tokenPath(dataDir string) string {
	return filepath.Join(dataDir, "token")
}

func encryptedTokenPath(dataDir string) string {
	return filepath.Join(dataDir, "token.enc")
}

func (t *TokenStore) ensureManager() error {
	if t.encManager == nil || t.passphrase != "" {
		t.encManager = NewEncryptionManager(t.method, t.sshKeyPath)
		t.encManager.SetPassphrase(t.passphrase)
		if err := t.encManager.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}
	return nil
}

// Load reads the API token from disk. A missing file is not an error: the
// backend may not require authentication, so an empty token is returned.
func (t *TokenStore) Load(dataDir string) (string, error) {
	switch t.method {
	case EncryptionNone:
		path := tokenPath(dataDir)
		if !FileExists(path) {
			return "", nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil

	case EncryptionSSHKey:
		path := encryptedTokenPath(dataDir)
		if !FileExists(path) {
			return "", nil
		}
		if err := t.ensureManager(); err != nil {
			return "", err
		}
		encrypted, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read encrypted token: %w", err)
		}
		decrypted, err := t.encManager.Decrypt(encrypted)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt token: %w", err)
		}
		return strings.TrimSpace(string(decrypted)), nil

	default:
		return "", fmt.Errorf("unknown encryption method: %s", t.method)
	}
}

// Save writes the API token to disk with 0600 permissions
func (t *TokenStore) Save(dataDir string, token string) error {
	switch t.method {
	case EncryptionNone:
		if err := os.WriteFile(tokenPath(dataDir), []byte(token+"\n"), 0600); err != nil {
			return fmt.Errorf("failed to write token file: %w", err)
		}
		return nil

	case EncryptionSSHKey:
		if err := t.ensureManager(); err != nil {
			return err
		}
		encrypted, err := t.encManager.Encrypt([]byte(token))
		if err != nil {
			return fmt.Errorf("failed to encrypt token: %w", err)
		}
		if err := os.WriteFile(encryptedTokenPath(dataDir), encrypted, 0600); err != nil {
			return fmt.Errorf("failed to write encrypted token: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown encryption method: %s", t.method)
	}
}

// Delete removes any stored token (both plain and encrypted forms)
func (t *TokenStore) Delete(dataDir string) error {
	for _, path := range []string{tokenPath(dataDir), encryptedTokenPath(dataDir)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove token file: %w", err)
		}
	}
	return nil
}
