// Package main provides the terminal console for the Loopline admin backend.
// It drives the SDK client through a bubbletea UI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/loopline-app/loopline-admin/internal/config"
	"github.com/loopline-app/loopline-admin/internal/tui"
	"github.com/loopline-app/loopline-admin/sdk/admin"
)

func main() {
	var configPath string
	var baseURL string
	flag.StringVar(&configPath, "config", "", "Configure File Path")
	flag.StringVar(&baseURL, "base-url", "", "Backend base URL (overrides config)")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil && !errors.Is(errLoad, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "console warning: %v\n", errLoad)
	}

	if configPath == "" {
		configPath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	client := admin.NewClient(admin.Options{
		BaseURL:  cfg.BaseURL,
		Store:    admin.NewFileCredentialStore(cfg.CredentialsFile),
		Timeout:  cfg.RequestTimeout(),
		ProxyURL: cfg.ProxyURL,
	})

	program := tea.NewProgram(tui.NewApp(client), tea.WithAltScreen())
	if _, err = program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}
}
