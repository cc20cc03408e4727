package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/toolcalc/internal/prompts"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List demo modes",
	RunE:  runModes,
}

func runModes(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := prompts.Load(cfg.PromptsFile())
	if err != nil {
		return err
	}

	for _, name := range catalog.Names() {
		m, err := catalog.Select(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == cfg.Agent.Mode {
			marker = "*"
		}
		tools := "(none)"
		if len(m.Tools) > 0 {
			tools = strings.Join(m.Tools, ", ")
		}
		fmt.Printf("%s %-15s %s\n", marker, name, m.Description)
		fmt.Printf("    tools: %s  max steps: %d\n", tools, m.MaxSteps)
	}
	return nil
}
