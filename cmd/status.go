package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/toolcalc/internal/config"
	"github.com/crystaldolphin/toolcalc/internal/providers"
	"github.com/crystaldolphin/toolcalc/internal/shared/cmdutils"
	"github.com/crystaldolphin/toolcalc/internal/shared/llmutils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show toolcalc status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := llmutils.StringOrDefault(configPath, config.ConfigPath())

	fmt.Printf("%s toolcalc Status\n\n", cmdutils.Logo)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(cfgPath))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}
	printStatus(os.Stdout, cfg)
	return nil
}

// printStatus reports the mode, model and the provider client the
// configuration resolves to.
func printStatus(w io.Writer, cfg *config.Config) {
	if f := cfg.PromptsFile(); f != "" {
		fmt.Fprintf(w, "Modes:     %s %s\n", f, mark(f))
	}
	fmt.Fprintf(w, "Mode:      %s\n", cfg.Agent.Mode)
	fmt.Fprintf(w, "Model:     %s\n", cfg.Provider.Model)

	p := cfg.ProviderParams()
	client := providers.NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ProviderName, p.ExtraHeaders, p.Timeout)
	active := client.Spec()
	fmt.Fprintf(w, "Provider:  %s\n", active.Label())
	fmt.Fprintf(w, "Endpoint:  %s\n\n", client.APIBase())

	fmt.Fprintln(w, "Providers:")
	for _, spec := range providers.PROVIDERS {
		label := spec.Label()
		if spec.Name == active.Name {
			label += " *"
		}
		switch {
		case spec.Name == active.Name && p.APIKey != "":
			fmt.Fprintf(w, "  %-20s ✓\n", label)
		case spec.IsLocal:
			fmt.Fprintf(w, "  %-20s %s\n", label, spec.DefaultAPIBase)
		case spec.EnvKey != "" && os.Getenv(spec.EnvKey) != "":
			fmt.Fprintf(w, "  %-20s ✓ (%s)\n", label, spec.EnvKey)
		default:
			fmt.Fprintf(w, "  %-20s (not set)\n", label)
		}
	}
}

func mark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}
