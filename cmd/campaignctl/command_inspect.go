package main

import (
	"fmt"

	"github.com/sourceplane/campaignctl/internal/render"
	"github.com/spf13/cobra"
)

var inspectBaseID int

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show a campaign's metadata and squadrons",
	Long:  "Load a campaign and print its metadata, effective settings and squadron tree. Use --base-id to show a single base.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectCampaign(cmd, args[0])
	},
}

func registerInspectCommand(root *cobra.Command) {
	root.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVarP(&inspectBaseID, "base-id", "b", 0, "Show only the squadrons at this base")
}

func inspectCampaign(cmd *cobra.Command, path string) error {
	ld, err := newLoader()
	if err != nil {
		return err
	}

	m, err := ld.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load campaign %s: %w", path, err)
	}

	viewer := render.NewCampaignViewer(m)
	if cmd.Flags().Changed("base-id") {
		fmt.Println(viewer.ViewBase(inspectBaseID))
		return nil
	}

	fmt.Print(viewer.ViewSummary(m.Registry()))
	fmt.Println("\nSquadrons:")
	fmt.Print(viewer.ViewBases())
	return nil
}
