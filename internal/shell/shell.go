// Package shell is the interactive terminal front end: it reads questions
// line by line and prints the assistant's answers.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/crystaldolphin/toolcalc/internal/agent"
	"github.com/crystaldolphin/toolcalc/internal/prompts"
	"github.com/crystaldolphin/toolcalc/internal/shared/cmdutils"
)

const farewell = "Goodbye!"

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// IsExitCommand reports whether line ends the session.
func IsExitCommand(line string) bool {
	return exitCommands[strings.ToLower(strings.TrimSpace(line))]
}

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (agent.Result, error)
}

// Shell is a sequential REPL: one outstanding question at a time.
type Shell struct {
	asker  Asker
	mode   prompts.Mode
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// New creates a Shell. mode is only used for the banner.
func New(asker Asker, mode prompts.Mode, in io.Reader, out, errOut io.Writer) *Shell {
	return &Shell{asker: asker, mode: mode, in: in, out: out, errOut: errOut}
}

// Run reads lines until an exit command, EOF or ctx cancellation.
// A failing turn is reported and the loop continues; Run only returns an
// error when ctx ends.
func (s *Shell) Run(ctx context.Context) error {
	s.banner()

	scanner := bufio.NewScanner(s.in)

	for {
		fmt.Fprint(s.out, "You: ")

		scanDone := make(chan bool, 1)
		go func() {
			scanDone <- scanner.Scan()
		}()

		select {
		case ok := <-scanDone:
			if !ok {
				fmt.Fprintln(s.out, "\n"+farewell)
				return nil
			}
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\n"+farewell)
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if IsExitCommand(line) {
			fmt.Fprintln(s.out, farewell)
			return nil
		}

		res, err := s.turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(s.out, "\n"+farewell)
				return ctx.Err()
			}
			slog.Error("Turn failed", "err", err)
			fmt.Fprintf(s.errOut, "Error: %v\n\n", err)
			continue
		}
		cmdutils.PrintResponse(s.out, res.Text, res.Forced())
	}
}

// turn asks one question, converting a panic into an error.
func (s *Shell) turn(ctx context.Context, line string) (res agent.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return s.asker.Ask(ctx, line)
}

func (s *Shell) banner() {
	fmt.Fprintf(s.out, "%s toolcalc interactive mode (type 'exit' or Ctrl+C to quit)\n", cmdutils.Logo)
	if s.mode.Name != "" {
		fmt.Fprintf(s.out, "Mode: %s", s.mode.Name)
		if s.mode.Description != "" {
			fmt.Fprintf(s.out, " (%s)", s.mode.Description)
		}
		fmt.Fprintln(s.out)
	}
	if len(s.mode.Suggestions) > 0 {
		fmt.Fprintln(s.out, "Try:")
		for _, q := range s.mode.Suggestions {
			fmt.Fprintf(s.out, "  • %s\n", q)
		}
	}
	fmt.Fprintln(s.out)
}
