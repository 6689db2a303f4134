package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dealhound",
	Short: "dealhound product search aggregator",
	Long: `dealhound fans a product query out to every configured search
provider, then merges, deduplicates, scores, and ranks the results.

Commands:
  dealhound search     Run an aggregated product search
  dealhound providers  Show configured providers and available types`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		effective := logLevel
		if !cmd.Flags().Changed("log") && cfg.LogLevel != "" {
			effective = cfg.LogLevel
		}
		level, err := logger.ParseLevel(effective)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
}

func defaultConfigPath() string {
	if env := os.Getenv("DEALHOUND_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "dealhound.yaml"
	}
	return home + "/.dealhound/config.yaml"
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
