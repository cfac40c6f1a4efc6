package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached vector stores",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	sessions := store.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No cached vector stores.")
		return nil
	}

	fmt.Printf("Cache file: %s\n\n", store.Path())
	fmt.Println("Cached vector stores (per directory/glob key):")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range sessions {
		marker := ""
		if s.LastUsed {
			marker = "(last used)"
		}
		fmt.Fprintf(w, "- %s\t->\t%s\t%d files\t%s\n", s.Key, s.StoreID, s.FileCount, marker)
	}
	return w.Flush()
}
