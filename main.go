package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bitui/api"
	"bitui/chat"
	"bitui/config"
	"bitui/model"
	"bitui/storage"
	"bitui/ui"
)

const Version = "v0.1.0"

func main() {
	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		missingVar := config.GetMissingEnvVar()
		errorMsg := fmt.Sprintf("Missing environment variable: %s\n\n"+
			"When using environment variables, both must be set:\n"+
			"  • BITUI_API_URL\n"+
			"  • BITUI_DATA_DIR\n\n"+
			"Set the missing variable before launching bitui.",
			missingVar)
		runErrorModal("Configuration Error", errorMsg)
		os.Exit(0)
	}

	// Load() writes default config files on first run
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dataDir := cfg.DataDir()

	config.InitDebugLog(dataDir)

	tokenStore := config.NewTokenStore(config.EncryptionMethod(cfg.TokenEncryption), cfg.SSHKeyPath)
	if passphrase := os.Getenv("BITUI_SSH_PASSPHRASE"); passphrase != "" {
		tokenStore.SetPassphrase(passphrase)
	}

	// BITUI_API_TOKEN seeds or clears the stored token: a non-empty value is
	// written to disk (encrypted at rest when configured), an explicitly
	// empty value removes the stored one.
	if envToken, ok := os.LookupEnv("BITUI_API_TOKEN"); ok {
		if envToken == "" {
			if err := tokenStore.Delete(dataDir); err != nil {
				runErrorModal("Token Error", fmt.Sprintf("Failed to remove stored API token:\n\n%v", err))
				os.Exit(1)
			}
		} else if err := tokenStore.Save(dataDir, envToken); err != nil {
			runErrorModal("Token Error", fmt.Sprintf("Failed to store API token:\n\n%v", err))
			os.Exit(1)
		}
	}

	token, err := tokenStore.Load(dataDir)
	if err != nil {
		runErrorModal("Token Error", fmt.Sprintf("Failed to load API token:\n\n%v", err))
		os.Exit(1)
	}

	conversationStorage, err := storage.NewConversationStorage(dataDir)
	if err != nil {
		fmt.Printf("Failed to initialize conversation storage: %v\n", err)
		os.Exit(1)
	}

	// Single-instance enforcement
	isLocked, runningPID, err := conversationStorage.CheckInstanceLock()
	if err != nil {
		fmt.Printf("Failed to check instance lock: %v\n", err)
		os.Exit(1)
	}
	if isLocked {
		lockedModal := ui.NewInstanceLockedModal(runningPID)
		p := tea.NewProgram(lockedModal, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m, ok := finalModel.(ui.InstanceLockedModal)
		if !ok || !m.ForceDelete() {
			os.Exit(0)
		}
		if err := conversationStorage.UnlockInstance(); err != nil {
			fmt.Printf("Failed to remove stale lock: %v\n", err)
			os.Exit(1)
		}
	}

	if err := conversationStorage.LockInstance(); err != nil {
		fmt.Printf("Failed to lock bitui instance: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := conversationStorage.UnlockInstance(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to unlock bitui instance: %v", err)
		}
	}()

	// Analytics responses are cached on disk so tab switches don't hammer
	// the backend
	cache, err := storage.NewResponseCache(dataDir, cfg.CacheTTL)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: response cache unavailable, requests go straight to the backend: %v", err)
		}
		cache = nil
	}
	defer func() {
		if cache != nil {
			if err := cache.Close(); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("Warning: failed to close response cache: %v", err)
			}
		}
	}()

	var apiCache api.Cache
	if cache != nil {
		apiCache = cache
	}
	apiClient := api.NewClient(cfg.APIBaseURL, token, cfg.RequestTimeout, apiCache)

	chatClient := chat.NewClient(
		chat.NewStore(),
		chat.NewHTTPTransport(cfg.APIBaseURL, token, nil),
		cfg.StreamTimeout,
	)
	defer chatClient.Close()

	// Resume the last conversation if one was open
	var lastConversation *storage.Conversation
	if lastID, err := conversationStorage.LoadCurrentConversationID(); err == nil && lastID != "" {
		lastConversation, _ = conversationStorage.Load(lastID)
	}

	searchIndex := storage.NewSearchIndex(conversationStorage)
	dataModel := model.NewModel(cfg, apiClient, chatClient, conversationStorage, lastConversation, searchIndex, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running bitui: %v\n", err)
		os.Exit(1)
	}
}

func runErrorModal(title, message string) {
	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
