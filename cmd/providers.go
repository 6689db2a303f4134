package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/dealhound/internal/providers"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured providers and available types",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Configured providers:")
		if len(cfg.Search.Providers) == 0 {
			fmt.Println("  (none)")
		}
		for _, pc := range cfg.Search.Providers {
			state := "enabled"
			if !pc.Enabled {
				state = "disabled"
			}
			fmt.Printf("  - %s (type %s, priority %d, %s)\n", pc.Name, pc.Type, pc.Priority, state)
		}

		fmt.Printf("\nAvailable types: %s\n", strings.Join(providers.NewCatalog().Types(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
