package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragcli/internal/auth"
	"ragcli/internal/config"
	"ragcli/internal/openai"
	"ragcli/internal/session"
)

var rootCmd = &cobra.Command{
	Use:          "rag-cli",
	Short:        "rag-cli — index local files into remote vector stores and ask questions",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `rag-cli maps directories and glob patterns to remote vector stores,
remembers the mapping in ~/.rag_vector_stores.json, and answers questions
against the indexed files using retrieval.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAPIClient builds the API client from config and discovered credentials.
// Credential failure aborts before any operation, with setup instructions.
func newAPIClient() (*openai.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load config: %w", err)
	}
	_ = config.EnsureDotEnvTemplate() // best effort, first run convenience

	key, err := auth.LoadAPIKey()
	if err != nil {
		return nil, nil, err
	}

	client := openai.NewClient(openai.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     key,
		Model:      cfg.Model,
		MaxResults: cfg.MaxResults,
	})
	return client, cfg, nil
}

// openStore opens the session cache at its default location.
func openStore() (*session.Store, error) {
	path, err := config.CachePath()
	if err != nil {
		return nil, err
	}
	store, err := session.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open session cache: %w", err)
	}
	return store, nil
}
