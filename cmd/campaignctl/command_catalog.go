package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var catalogLong bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Summarize the engine catalog",
	Long:  "Show the theaters, factions and aircraft the loaded catalog recognizes. Use --long to list every identifier.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCatalog()
	},
}

func registerCatalogCommand(root *cobra.Command) {
	root.AddCommand(catalogCmd)

	catalogCmd.Flags().BoolVarP(&catalogLong, "long", "l", false, "List every identifier")
}

func showCatalog() error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	f := cat.File()
	fmt.Printf("Catalog: %s\n", catalogPath())
	for _, section := range []struct {
		title string
		ids   []string
	}{
		{"Theaters", f.Theaters},
		{"Factions", f.Factions},
		{"Aircraft", f.Aircraft},
	} {
		fmt.Printf("  %-9s %d\n", section.title+":", len(section.ids))
		if catalogLong {
			fmt.Printf("    %s\n", strings.Join(section.ids, "\n    "))
		}
	}
	return nil
}
