package main

import (
	"fmt"

	"github.com/sourceplane/campaignctl/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List recognized campaign settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSettings()
	},
}

func registerSettingsCommand(root *cobra.Command) {
	root.AddCommand(settingsCmd)
}

func listSettings() error {
	fmt.Println("Available Settings:")
	for _, opt := range settings.DefaultRegistry().Options() {
		fmt.Printf("  %-22s %-7s default=%-6s %s\n", opt.Name, opt.Kind, opt.Default, opt.Description)
	}
	return nil
}
