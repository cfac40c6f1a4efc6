package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragcli/internal/session"
	"ragcli/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat REF",
	Short: "Start an interactive chat session against an indexed vector store",
	Long: `Chat interactively with retrieval over one vector store. REF is a
previously indexed path/glob, an explicit vs_ id, or auto for the most
recently used store. History lives in memory only and is lost on exit.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	resolver := &session.Resolver{Store: store}
	id, err := resolver.Resolve(args[0])
	if err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	m := tui.New(client, id)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
