package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type APIConfig struct {
	BaseURL            string `toml:"base_url"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
	StreamTimeoutSecs  int    `toml:"stream_timeout_secs"`
	CacheTTLSecs       int    `toml:"cache_ttl_secs"`
}

type SecurityConfig struct {
	TokenEncryption string `toml:"token_encryption"` // "none" or "ssh_key"
	SSHKeyPath      string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	API      APIConfig      `toml:"api"`
	Security SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory   string
	APIBaseURL      string
	RequestTimeout  time.Duration
	StreamTimeout   time.Duration
	CacheTTL        time.Duration
	TokenEncryption string
	SSHKeyPath      string
	Keybindings     *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("BITUI_API_URL"); url != "" {
		c.APIBaseURL = url
	}
	if dataDir := os.Getenv("BITUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("BITUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain request details)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (BITUI_DEBUG=%s) ===", os.Getenv("BITUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv("BITUI_API_URL") != "" &&
		os.Getenv("BITUI_DATA_DIR") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("BITUI_API_URL") != "" ||
		os.Getenv("BITUI_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("BITUI_API_URL") == "" {
		return "BITUI_API_URL"
	}
	if os.Getenv("BITUI_DATA_DIR") == "" {
		return "BITUI_DATA_DIR"
	}
	return ""
}

// secsOr converts a seconds field to a duration, falling back when unset
func secsOr(secs int, fallback time.Duration) time.Duration {
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	c.APIBaseURL = userCfg.API.BaseURL
	c.RequestTimeout = secsOr(userCfg.API.RequestTimeoutSecs, 15*time.Second)
	c.StreamTimeout = secsOr(userCfg.API.StreamTimeoutSecs, 120*time.Second)
	c.CacheTTL = secsOr(userCfg.API.CacheTTLSecs, 60*time.Second)
	c.TokenEncryption = userCfg.Security.TokenEncryption
	c.SSHKeyPath = userCfg.Security.SSHKeyPath
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/bitui",
		APIBaseURL:      "http://localhost:8000",
		RequestTimeout:  15 * time.Second,
		StreamTimeout:   120 * time.Second,
		CacheTTL:        60 * time.Second,
		TokenEncryption: "none",
	}

	if HasAllEnvVars() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		dataDir := cfg.DataDir()
		userCfg, err := LoadUserConfig(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.applyUserConfig(userCfg)
		cfg.applyEnvOverrides()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	keybindings, err := LoadKeybindings(dataDir)
	if err != nil {
		// Invalid keybindings should not brick the app
		keybindings = DefaultKeybindings()
	}
	cfg.Keybindings = keybindings

	return cfg, nil
}
