// Package files handles local file collection, cost estimation and format
// conversion ahead of ingestion.
package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ragcli/internal/config"
)

// SupportedExtensions is the retrieval allow-list. Note: .org files are
// converted to markdown before upload.
var SupportedExtensions = map[string]bool{
	".pdf": true, ".txt": true, ".md": true, ".rtf": true,
	".docx": true, ".pptx": true,
	".csv": true, ".tsv": true,
	".html": true, ".htm": true,
	".json": true, ".xml": true,
	".org": true,
}

// SupportedExtensionList returns the allow-list sorted, for error messages.
func SupportedExtensionList() []string {
	out := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Collect expands a directory or glob reference and returns the supported
// files as sorted, deduplicated absolute paths, plus the paths that were
// skipped for having an unsupported extension. A directory is walked
// recursively; anything else is treated as a glob pattern (** supported).
func Collect(reference string) (files, skipped []string, err error) {
	expanded, err := config.ExpandPath(reference)
	if err != nil {
		return nil, nil, err
	}

	var candidates []string
	if fi, statErr := os.Stat(expanded); statErr == nil && fi.IsDir() {
		candidates, err = walkDir(expanded)
	} else {
		candidates, err = doublestar.FilepathGlob(expanded)
		if err != nil {
			err = fmt.Errorf("invalid pattern %q: %w", reference, err)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		fi, statErr := os.Stat(p)
		if statErr != nil || fi.IsDir() {
			continue
		}
		abs, absErr := filepath.Abs(p)
		if absErr != nil {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		if SupportedExtensions[strings.ToLower(filepath.Ext(abs))] {
			files = append(files, abs)
		} else {
			skipped = append(skipped, abs)
		}
	}
	sort.Strings(files)
	sort.Strings(skipped)
	return files, skipped, nil
}

func walkDir(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk %s: %w", root, err)
	}
	return out, nil
}
