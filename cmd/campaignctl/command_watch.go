package main

import (
	"fmt"

	"github.com/sourceplane/campaignctl/internal/campaign"
	"github.com/sourceplane/campaignctl/internal/loader"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Revalidate a campaign whenever it changes",
	Long:  "Load a campaign and reload it on every save. An invalid edit is reported and the last valid model is kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCampaign(cmd, args[0])
	},
}

func registerWatchCommand(root *cobra.Command) {
	root.AddCommand(watchCmd)
}

func watchCampaign(cmd *cobra.Command, path string) error {
	ld, err := newLoader()
	if err != nil {
		return err
	}

	fmt.Println("□ Loading campaign...")
	store, err := loader.NewStore(ld, path)
	if err != nil {
		return fmt.Errorf("failed to load campaign %s: %w", path, err)
	}
	fmt.Printf("✓ %s loaded, watching for changes (Ctrl+C to stop)\n", store.Current().Metadata().Name)

	return store.Watch(cmd.Context(), log, func(m *campaign.Model, err error) {
		if err != nil {
			log.Error().Err(err).Str("path", store.Path()).Msg("campaign invalid, keeping previous version")
			return
		}
		log.Info().
			Str("path", store.Path()).
			Str("campaign", m.Metadata().Name).
			Int("bases", len(m.Bases())).
			Int("squadrons", m.SquadronCount()).
			Msg("campaign reloaded")
	})
}
