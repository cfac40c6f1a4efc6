package files

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// NeedsConversion reports whether path must be converted before upload.
func NeedsConversion(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".org")
}

// PrepareUpload returns the path to upload for a source file. For .org files
// it converts to markdown in a fresh temp directory and returns a cleanup
// that removes it; callers must invoke cleanup on every exit path. Other
// files are returned as-is with a no-op cleanup.
func PrepareUpload(path string) (uploadPath string, cleanup func(), err error) {
	if !NeedsConversion(path) {
		return path, func() {}, nil
	}
	return convertOrgToMarkdown(path)
}

// convertOrgToMarkdown converts an .org file to .md using pandoc.
func convertOrgToMarkdown(orgPath string) (string, func(), error) {
	pandoc, err := exec.LookPath("pandoc")
	if err != nil {
		return "", func() {}, fmt.Errorf("pandoc not found on PATH\n"+
			"  Install pandoc to convert .org files to markdown: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "rag-org-")
	if err != nil {
		return "", func() {}, fmt.Errorf("cannot create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	base := strings.TrimSuffix(filepath.Base(orgPath), filepath.Ext(orgPath))
	mdPath := filepath.Join(tmpDir, base+".md")

	c := exec.Command(pandoc, orgPath, "-o", mdPath)
	if out, err := c.CombinedOutput(); err != nil {
		cleanup()
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return "", func() {}, fmt.Errorf("pandoc failed for %s: %s: %w", orgPath, msg, err)
		}
		return "", func() {}, fmt.Errorf("pandoc failed for %s: %w", orgPath, err)
	}
	return mdPath, cleanup, nil
}
