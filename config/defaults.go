package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/bitui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		API: APIConfig{
			BaseURL:            "http://localhost:8000",
			RequestTimeoutSecs: 15,
			StreamTimeoutSecs:  120,
			CacheTTLSecs:       60,
		},
		Security: SecurityConfig{
			TokenEncryption: "none",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# BITUI System Configuration
# Location: ~/.config/bitui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/bitui"
`
}

func GenerateUserConfigTemplate() string {
	return `# BITUI User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[api]
# Analytics backend base URL
base_url = "http://localhost:8000"

# Timeout for dashboard REST requests (seconds)
request_timeout_secs = 15

# Deadline covering an entire chat stream, connect included (seconds)
stream_timeout_secs = 120

# How long cached dashboard responses stay fresh (seconds)
cache_ttl_secs = 60

[security]
# How the backend API token is stored at rest:
#   "none"    - plaintext (default, fine for local backends without auth)
#   "ssh_key" - AES-256-GCM with a key derived from an SSH key signature
token_encryption = "none"

# Path to the SSH private key used when token_encryption = "ssh_key"
# ssh_key_path = "~/.ssh/id_ed25519"

# To store a token, launch once with BITUI_API_TOKEN set; it is written to
# the data directory using the method above. BITUI_API_TOKEN="" removes it.
# BITUI_SSH_PASSPHRASE unlocks a passphrase-protected SSH key.
`
}
