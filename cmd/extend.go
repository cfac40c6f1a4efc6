package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ragcli/internal/files"
	"ragcli/internal/ingest"
	"ragcli/internal/session"
)

var flagExtendYes bool

var extendCmd = &cobra.Command{
	Use:   "extend EXISTING_REF NEW_FILES_GLOB",
	Short: "Attach new files to an already indexed vector store",
	Long: `Attach files matching NEW_FILES_GLOB to the vector store resolved from
EXISTING_REF (a previously indexed path/glob, an explicit vs_ id, or auto).
Files already in the store are skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtend,
}

func init() {
	extendCmd.Flags().BoolVarP(&flagExtendYes, "yes", "y", false, "Skip the cost confirmation prompt")
	rootCmd.AddCommand(extendCmd)
}

func runExtend(cmd *cobra.Command, args []string) error {
	sessionRef, newPattern := args[0], args[1]

	store, err := openStore()
	if err != nil {
		return err
	}

	resolver := &session.Resolver{Store: store}
	id, err := resolver.Resolve(sessionRef)
	if err != nil {
		if errors.Is(err, session.ErrNotIndexed) {
			return fmt.Errorf("%q is not previously indexed; use 'rag-cli index' instead", sessionRef)
		}
		return err
	}

	paths, skipped, err := files.Collect(newPattern)
	if err != nil {
		return err
	}
	for _, p := range skipped {
		printSkip("", "unsupported file type: "+p)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported files found for: %s\n  Supported extensions: %s",
			newPattern, strings.Join(files.SupportedExtensionList(), ", "))
	}

	// Never re-upload what the store already holds.
	already := store.IndexedFiles(id)
	newPaths := paths[:0]
	for _, p := range paths {
		if !already[p] {
			newPaths = append(newPaths, p)
		}
	}
	if len(newPaths) == 0 {
		printInfo("", "no new files to index; everything already belongs to this vector store")
		return nil
	}
	printInfo("", fmt.Sprintf("found %d new files to attach", len(newPaths)))

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	est := files.EstimateCost(newPaths, cfg.EmbedPricePerMillion)
	proceed, err := showCostAndConfirm(est, cfg.EmbedPricePerMillion, flagExtendYes, os.Stdin)
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
	fmt.Printf("\nAttaching files to existing vector store: %s\n", id)
	res, err := pipeline.Ingest(ctx, id, ingest.ExtendStore, "", newPaths)
	if err != nil {
		return err
	}

	if len(res.Succeeded) == 0 {
		// Leave the prior cache entry untouched.
		return fmt.Errorf("no files could be attached to %s; cache left unchanged", id)
	}

	ref, err := session.Classify(sessionRef)
	if err != nil {
		return err
	}
	if ref.Kind == session.RefPathOrGlob {
		if err := store.RecordExtend(ref.Key, id, res.Succeeded); err != nil {
			return err
		}
	} else {
		// auto or explicit id: no key to re-record, just track membership.
		store.AddFiles(id, res.Succeeded)
		store.MarkUsed(id)
	}
	if err := store.Save(); err != nil {
		return err
	}

	printOK("", fmt.Sprintf("attached %d files to %s", len(res.Succeeded), id))
	summarizeFailures(res)
	return nil
}
