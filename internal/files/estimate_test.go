package files

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEstimateCost_FourMillionChars(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(p, bytes.Repeat([]byte("a"), 4_000_000), 0o644); err != nil {
		t.Fatal(err)
	}

	const price = 0.02
	est := EstimateCost([]string{p}, price)

	if est.Chars != 4_000_000 {
		t.Errorf("chars = %d", est.Chars)
	}
	if est.Tokens != 1_000_000 {
		t.Errorf("tokens = %d", est.Tokens)
	}
	if est.CostUSD != price {
		t.Errorf("cost = %v, want %v", est.CostUSD, price)
	}
}

func TestEstimateCost_UnreadableSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", strings.Repeat("x", 40))

	est := EstimateCost([]string{good, filepath.Join(dir, "missing.txt")}, 0.02)
	if est.Chars != 40 {
		t.Errorf("chars = %d", est.Chars)
	}
	if len(est.Skipped) != 1 {
		t.Fatalf("skipped = %v", est.Skipped)
	}
	if filepath.Base(est.Skipped[0].Path) != "missing.txt" || est.Skipped[0].Reason == "" {
		t.Errorf("skipped entry = %+v", est.Skipped[0])
	}
}

func TestEstimateCost_InvalidUTF8Tolerated(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "mixed.txt")
	// 4 valid runes (two ASCII, one 2-byte, one 3-byte) around invalid bytes.
	body := append([]byte("ab"), 0xff, 0xfe)
	body = append(body, []byte("é€")...)
	if err := os.WriteFile(p, body, 0o644); err != nil {
		t.Fatal(err)
	}

	est := EstimateCost([]string{p}, 0.02)
	if est.Chars != 4 {
		t.Errorf("chars = %d, want 4 (invalid bytes dropped)", est.Chars)
	}
	if len(est.Skipped) != 0 {
		t.Errorf("decode issues must not skip the file: %v", est.Skipped)
	}
}

func TestEstimateCost_Deterministic(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.md", strings.Repeat("word ", 100))

	a := EstimateCost([]string{p}, 0.02)
	b := EstimateCost([]string{p}, 0.02)
	if a.Chars != b.Chars || a.Tokens != b.Tokens || a.CostUSD != b.CostUSD {
		t.Errorf("estimate not deterministic: %+v vs %+v", a, b)
	}
}
