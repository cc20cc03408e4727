package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/toolcalc/internal/shared/cmdutils"
)

var (
	askMode    string
	askTimeout time.Duration
	askTrace   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "Demo mode (see `toolcalc modes`)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 5*time.Minute, "Give up after this long")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "Print every tool call and its result")
}

func runAsk(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newAssistant(cfg, askMode)
	if err != nil {
		return err
	}

	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, askTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking (%s)...\n", a.Mode().Name)
	res, err := a.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if askTrace {
		for step, batch := range res.ToolResults {
			for _, cr := range batch {
				fmt.Printf("  [step %d] %s %v → %s\n", step+1, cr.Name, cr.Arguments, cr.Content())
			}
		}
	}
	cmdutils.PrintResponse(os.Stdout, res.Text, res.Forced())
	return nil
}
