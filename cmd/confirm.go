package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ragcli/internal/files"
)

// showCostAndConfirm renders the embedding cost estimate and asks the user
// to proceed. assumeYes (the --yes flag) skips the prompt. Returns false
// when the user declines.
func showCostAndConfirm(est files.Estimate, pricePerMillion float64, assumeYes bool, in io.Reader) (bool, error) {
	printSection("Embedding cost estimate")
	fmt.Printf("Total characters:  %d\n", est.Chars)
	fmt.Printf("Estimated tokens:  %d (assuming ~4 chars/token)\n", est.Tokens)
	fmt.Printf("Approximate cost:  US$%.4f (at US$%.2f per 1M tokens)\n", est.CostUSD, pricePerMillion)
	fmt.Println("(Coarse estimate; actual billing may differ.)")
	for _, sk := range est.Skipped {
		printWarn("", fmt.Sprintf("could not read %s for the estimate: %s", sk.Path, sk.Reason))
	}

	if assumeYes {
		return true, nil
	}

	fmt.Print("Proceed with this approximate cost? [y/N]: ")
	return confirmProceed(in)
}

// confirmProceed reads one line and interprets it as a yes/no answer.
// Anything but an explicit yes declines.
func confirmProceed(in io.Reader) (bool, error) {
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil // EOF without input declines
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
