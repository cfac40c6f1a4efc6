package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ragcli/internal/openai"
	"ragcli/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask REF QUESTION...",
	Short: "Ask a single question against an indexed vector store",
	Long: `Ask a one-shot question. REF is a previously indexed path/glob, an
explicit vs_ id, or auto for the most recently used store.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	reference := args[0]
	question := strings.Join(args[1:], " ")

	store, err := openStore()
	if err != nil {
		return err
	}
	resolver := &session.Resolver{Store: store}
	id, err := resolver.Resolve(reference)
	if err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	answer, err := client.Answer(ctx, id, []openai.Message{{Role: "user", Content: question}})
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
