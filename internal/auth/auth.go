// Package auth discovers the API key used for all remote calls.
//
// Lookup order: OPENAI_API_KEY in the process environment, then
// ~/.rag-cli/.env, then a ~/.authinfo line of the form
//
//	machine api.openai.com login apikey password sk-...
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ragcli/internal/config"
)

var authinfoRe = regexp.MustCompile(`machine\s+api\.openai\.com.*password\s+(\S+)`)

// LoadAPIKey returns the effective API key or an error with setup
// instructions. Commands call this before any other work.
func LoadAPIKey() (string, error) {
	key, err := config.GetConfigValue("OPENAI_API_KEY")
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	key, err = parseAuthinfo(filepath.Join(home, ".authinfo"))
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	return "", errors.New("OpenAI API key not found\n" +
		"  Set OPENAI_API_KEY in the environment (or ~/.rag-cli/.env),\n" +
		"  or add a line to ~/.authinfo:\n" +
		"    machine api.openai.com login apikey password sk-...")
}

// parseAuthinfo scans the given authinfo file for an api.openai.com entry.
// A missing file is not an error; the caller falls through to its own
// "not found" message.
func parseAuthinfo(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if m := authinfoRe.FindStringSubmatch(line); m != nil {
			return m[1], nil
		}
	}
	return "", nil
}
