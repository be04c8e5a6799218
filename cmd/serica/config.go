package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoanglong/serica/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		fmt.Printf("server.listen: %s\n", cfg.Server.Listen)
		fmt.Printf("pipeline.analysis_provider: %s\n", cfg.Pipeline.AnalysisProvider)
		fmt.Printf("pipeline.translation_provider: %s\n", cfg.Pipeline.TranslationProvider)
		fmt.Printf("jobs.max_attempts: %d\n", cfg.Jobs.MaxAttempts)
		fmt.Println("llm_providers:")
		for name, p := range cfg.LLMProviders {
			state := "disabled"
			if p.Enabled {
				state = "enabled"
			}
			fmt.Printf("  %s: type=%s model=%s rate_limit=%.1f (%s)\n",
				name, p.Type, p.Model, p.RateLimit, state)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
