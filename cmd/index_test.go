package cmd

import (
	"strings"
	"testing"
)

func TestDeriveStoreName(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"/home/me/notes", "rag-cli:notes"},
		{"/home/me/docs/*.md", "rag-cli:*.md"},
		{"/home/me/docs/**/*.md", "rag-cli:*.md"},
		{"/", "rag-cli"},
		{".", "rag-cli"},
		{"", "rag-cli"},
	}
	for _, c := range cases {
		if got := deriveStoreName(c.key); got != c.want {
			t.Errorf("deriveStoreName(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestConfirmProceed(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"anything else\n", false},
		{"", false}, // EOF declines
		{"y", true}, // yes without trailing newline
	}
	for _, c := range cases {
		got, err := confirmProceed(strings.NewReader(c.input))
		if err != nil {
			t.Fatalf("confirmProceed(%q): %v", c.input, err)
		}
		if got != c.want {
			t.Errorf("confirmProceed(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}
