// Package cmd implements the toolcalc CLI using cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/toolcalc/internal/agent"
	"github.com/crystaldolphin/toolcalc/internal/config"
	"github.com/crystaldolphin/toolcalc/internal/dependency"
	"github.com/crystaldolphin/toolcalc/internal/shared/cmdutils"
	"github.com/crystaldolphin/toolcalc/internal/shell"
)

const version = "0.1.0"

var (
	configPath string
	modeName   string
	showLogs   bool
)

// rootCmd is the base command. Without a subcommand it starts the shell.
var rootCmd = &cobra.Command{
	Use:   "toolcalc",
	Short: cmdutils.Logo + " toolcalc: LLM math with and without tools",
	Long: cmdutils.Logo + ` toolcalc asks a language model arithmetic questions, optionally giving
it calculator tools, so you can compare raw model math with tool-assisted math.`,
	SilenceUsage: true,
	RunE:         runShell,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.toolcalc/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showLogs, "logs", false, "Show runtime logs (debug level)")
	rootCmd.Flags().StringVarP(&modeName, "mode", "m", "", "Demo mode (see `toolcalc modes`)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(onboardCmd)
}

// loadConfig loads .env files, then the config file, and configures logging.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg.Log.Level)
	return cfg, nil
}

// setupLogging installs a text handler on stderr. --logs forces debug.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelWarn
	}
	if showLogs {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// newAssistant builds the container and the assistant for the selected mode.
func newAssistant(cfg *config.Config, mode string) (*agent.Assistant, error) {
	container, err := dependency.New(cfg)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = cfg.Agent.Mode
	}
	a, err := container.Factory().NewAssistant(mode)
	if err != nil {
		return nil, err
	}
	a.OnProgress = func(s string) { cmdutils.PrintProgress(os.Stdout, s) }
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runShell(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newAssistant(cfg, modeName)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	err = shell.New(a, a.Mode(), os.Stdin, os.Stdout, os.Stderr).Run(ctx)
	if ctx.Err() != nil {
		// Ctrl+C is a normal way to leave the shell.
		return nil
	}
	return err
}
