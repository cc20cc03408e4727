package cmdutils

import (
	"fmt"
	"io"
)

// Logo prefixes assistant output in the terminal.
const Logo = "🧮"

// PrintResponse writes an assistant answer. forced marks answers cut short
// by the step limit.
func PrintResponse(w io.Writer, text string, forced bool) {
	if text == "" {
		text = "(no answer)"
	}
	fmt.Fprintf(w, "\n%s toolcalc\n%s\n", Logo, text)
	if forced {
		fmt.Fprintln(w, "  ⚠ stopped at the step limit before a final answer")
	}
	fmt.Fprintln(w)
}

// PrintProgress writes an interim progress line.
func PrintProgress(w io.Writer, line string) {
	fmt.Fprintf(w, "  ↳ %s\n", line)
}
