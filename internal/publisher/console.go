package publisher

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ConsoleChannel renders verdicts for a human at a terminal, matching the
// teacher's TTY-detection pattern (cmd/cryptorun/main.go's term.IsTerminal
// check) to decide whether to color pass/fail.
type ConsoleChannel struct {
	Out      io.Writer
	isTTY    bool
}

// NewConsoleChannel wraps out, auto-detecting TTY-ness when out is *os.File.
func NewConsoleChannel(out io.Writer) *ConsoleChannel {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &ConsoleChannel{Out: out, isTTY: isTTY}
}

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Publish writes a single-line verdict summary plus any caveats.
func (c *ConsoleChannel) Publish(pv PublishedVerdict) {
	word := "PASS"
	color := ansiGreen
	if !pv.Verdict.Pass {
		word = "FAIL"
		color = ansiRed
	}

	if c.isTTY {
		fmt.Fprintf(c.Out, "%s[%s]%s %s/%s — %s\n", color, word, ansiReset, pv.UseCaseID, pv.Method, pv.Verdict.Explanation)
	} else {
		fmt.Fprintf(c.Out, "[%s] %s/%s - %s\n", word, pv.UseCaseID, pv.Method, pv.Verdict.Explanation)
	}
	for _, caveat := range pv.Caveats {
		fmt.Fprintf(c.Out, "  caveat: %s\n", caveat)
	}
}
