package files

import (
	"os"
	"unicode/utf8"
)

// charsPerToken is the coarse heuristic divisor used for the pre-ingestion
// estimate. Not calibrated per model.
const charsPerToken = 4

// SkippedFile records a file the estimator could not read at all.
type SkippedFile struct {
	Path   string
	Reason string
}

// Estimate is a deterministic approximation of ingestion cost for a file set.
type Estimate struct {
	Chars   int64
	Tokens  int64
	CostUSD float64
	Skipped []SkippedFile
}

// EstimateCost reads every file and derives an approximate token count and
// embedding cost at pricePerMillion USD per 1M tokens. Undecodable bytes
// within a file are skipped rather than failing it; entirely unreadable
// files are excluded from the sums and reported in Skipped. No side effects.
func EstimateCost(paths []string, pricePerMillion float64) Estimate {
	var est Estimate
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			est.Skipped = append(est.Skipped, SkippedFile{Path: p, Reason: err.Error()})
			continue
		}
		est.Chars += countValidRunes(data)
	}
	est.Tokens = est.Chars / charsPerToken
	est.CostUSD = float64(est.Tokens) / 1_000_000 * pricePerMillion
	return est
}

// countValidRunes counts decoded characters, dropping invalid UTF-8 bytes.
func countValidRunes(data []byte) int64 {
	var n int64
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError || size > 1 {
			n++
		}
		data = data[size:]
	}
	return n
}
