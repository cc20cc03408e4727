package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/toolcalc/internal/config"
	"github.com/crystaldolphin/toolcalc/internal/shared/cmdutils"
	"github.com/crystaldolphin/toolcalc/internal/shared/llmutils"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := llmutils.StringOrDefault(configPath, config.ConfigPath())

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Printf("\n%s toolcalc is ready!\n\n", cmdutils.Logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your API key to %s\n", cfgPath)
	fmt.Println("     or export OPENAI_API_KEY / ANTHROPIC_API_KEY (a .env file works too)")
	fmt.Println("  2. Compare modes:")
	fmt.Println("       toolcalc ask -m math-basic \"Find the square root of 386,154,294,354,481\"")
	fmt.Println("       toolcalc ask -m calculator \"Find the square root of 386,154,294,354,481\"")
	fmt.Println("  3. Chat: toolcalc")
	return nil
}
