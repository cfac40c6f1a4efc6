package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ragcli/internal/files"
	"ragcli/internal/ingest"
	"ragcli/internal/session"
)

var flagIndexYes bool

var indexCmd = &cobra.Command{
	Use:   "index PATH_OR_GLOB",
	Short: "Create a new vector store and index all supported files",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&flagIndexYes, "yes", "y", false, "Skip the cost confirmation prompt")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	reference := args[0]

	ref, err := session.Classify(reference)
	if err != nil {
		return err
	}
	if ref.Kind != session.RefPathOrGlob {
		return fmt.Errorf("index takes a directory or glob pattern, not %q", reference)
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	paths, skipped, err := files.Collect(reference)
	if err != nil {
		return err
	}
	for _, p := range skipped {
		printSkip("", "unsupported file type: "+p)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported files found for: %s\n  Supported extensions: %s",
			reference, strings.Join(files.SupportedExtensionList(), ", "))
	}
	printInfo("", fmt.Sprintf("found %d supported files", len(paths)))

	if prev, ok := store.Lookup(ref.Key); ok {
		printWarn("", fmt.Sprintf("key already indexed as %s; re-indexing creates a fresh store", prev))
	}

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	est := files.EstimateCost(paths, cfg.EmbedPricePerMillion)
	proceed, err := showCostAndConfirm(est, cfg.EmbedPricePerMillion, flagIndexYes, os.Stdin)
	if err != nil {
		return err
	}
	if !proceed {
		printInfo("", "aborted")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pipeline := &ingest.Pipeline{
		Client:  client,
		Convert: files.PrepareUpload,
		Report:  reportFileOutcome,
	}
	fmt.Printf("\nUploading %d files...\n", len(paths))
	res, err := pipeline.Ingest(ctx, "", ingest.CreateStore, deriveStoreName(ref.Key), paths)
	if err != nil {
		return fmt.Errorf("cannot create vector store: %w", err)
	}

	if len(res.Succeeded) == 0 {
		// Don't leave an empty store referenced in the cache as usable.
		return fmt.Errorf("no files could be indexed; not caching the session\n"+
			"  (remote store %s was created and is now orphaned)", res.StoreID)
	}

	store.RecordNew(ref.Key, res.StoreID)
	store.AddFiles(res.StoreID, res.Succeeded)
	if err := store.Save(); err != nil {
		return err
	}

	printSection("Vector store cached")
	fmt.Printf("Key:   %s\n", ref.Key)
	fmt.Printf("ID:    %s\n", res.StoreID)
	fmt.Printf("Cache: %s\n", store.Path())
	summarizeFailures(res)
	return nil
}

// deriveStoreName builds the remote display name from the cache key.
func deriveStoreName(key string) string {
	base := filepath.Base(filepath.FromSlash(key))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "rag-cli"
	}
	return "rag-cli:" + base
}

// reportFileOutcome is the per-file progress callback shared by index and
// extend.
func reportFileOutcome(path string, err error) {
	if err != nil {
		printErr("", fmt.Sprintf("%s: %v", path, err))
		return
	}
	printOK("", path)
}

// summarizeFailures lists failed files so the user can re-run extend for
// just those.
func summarizeFailures(res *ingest.Result) {
	if len(res.Failed) == 0 {
		return
	}
	printWarn("", fmt.Sprintf("%d files failed; re-run 'rag-cli extend' for them:", len(res.Failed)))
	for _, f := range res.Failed {
		printErr("", fmt.Sprintf("%s (%s)", f.Path, f.Reason))
	}
}
