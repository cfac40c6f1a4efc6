// Package session owns the mapping between user references (paths, globs,
// the auto sentinel, explicit store ids) and remote vector stores, and the
// cache file that persists it.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ragcli/internal/config"
)

// RefKind discriminates the interpretations of a user-supplied reference.
type RefKind int

const (
	// RefAuto is the literal "auto" sentinel: use the last-used store.
	RefAuto RefKind = iota
	// RefStoreID is an explicit vs_... identifier, passed through untouched.
	RefStoreID
	// RefPathOrGlob is a directory or glob pattern resolved via the cache.
	RefPathOrGlob
)

// Ref is a classified reference. Exactly one of ID and Key is set for the
// StoreID and PathOrGlob kinds; Auto carries neither.
type Ref struct {
	Kind RefKind
	ID   string // RefStoreID only
	Key  string // RefPathOrGlob only: the canonical cache key
}

// storeIDPrefix is the shape of explicit remote identifiers.
const storeIDPrefix = "vs_"

// Classify interprets a raw reference once, so downstream logic switches on
// the kind instead of re-deriving it from string shape.
func Classify(reference string) (Ref, error) {
	if reference == "auto" {
		return Ref{Kind: RefAuto}, nil
	}
	if strings.HasPrefix(reference, storeIDPrefix) {
		return Ref{Kind: RefStoreID, ID: reference}, nil
	}
	key, err := CanonicalKey(reference)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Kind: RefPathOrGlob, Key: key}, nil
}

// CanonicalKey normalizes a directory or glob reference into a stable cache
// key. Directories become symlink-resolved absolute paths; globs become the
// expanded pattern string with forward slashes. A pattern that matches zero
// files today still canonicalizes to the same key once matches exist, since
// the pattern is never resolved to its matches here.
func CanonicalKey(reference string) (string, error) {
	expanded, err := config.ExpandPath(reference)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(expanded); err == nil && fi.IsDir() {
		resolved, err := filepath.EvalSymlinks(expanded)
		if err != nil {
			return "", fmt.Errorf("cannot resolve %s: %w", expanded, err)
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return "", fmt.Errorf("cannot absolutize %s: %w", resolved, err)
		}
		return filepath.Clean(abs), nil
	}
	return filepath.ToSlash(expanded), nil
}
