package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sourceplane/campaignctl/internal/git"
	"github.com/sourceplane/campaignctl/internal/loader"
	"github.com/sourceplane/campaignctl/internal/render"
	"github.com/sourceplane/campaignctl/internal/runner"
	"github.com/spf13/cobra"
)

var (
	validateDir    string
	validateFormat string
	validateOutput string
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate campaign definition files",
	Long:  "Validate campaign files given as arguments or discovered with --dir. Use * or ** in --dir for recursive scanning.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCampaigns(cmd, args)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", "", "Directory to scan for campaign files")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text/json/yaml)")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Also write the report to a file (json or yaml by extension)")
	validateCmd.Flags().BoolVar(&changedOnly, "changed", false, "Validate only campaigns changed in git")
	validateCmd.Flags().StringVar(&baseBranch, "base", "main", "Base branch for change detection")
}

func validateCampaigns(cmd *cobra.Command, args []string) error {
	text := strings.EqualFold(validateFormat, "text") || validateFormat == ""
	progress := func(format string, a ...interface{}) {
		if text {
			fmt.Printf(format+"\n", a...)
		}
	}

	paths := append([]string(nil), args...)
	if validateDir != "" {
		progress("□ Discovering campaigns in %s...", validateDir)
		found, err := loader.Discover(appFs, validateDir)
		if err != nil {
			return fmt.Errorf("failed to discover campaigns: %w", err)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no campaign files given (pass files or --dir)")
	}

	if changedOnly {
		filtered, err := git.NewChangeDetector(baseBranch).FilterChanged(paths)
		if err != nil {
			return fmt.Errorf("failed to detect changes: %w", err)
		}
		if len(filtered) == 0 {
			progress("✓ No campaigns have changed")
			return nil
		}
		paths = filtered
	}

	ld, err := newLoader()
	if err != nil {
		return err
	}

	progress("□ Validating %d campaign(s)...", len(paths))
	results, err := runner.NewRunner(ld, cfg.Runner.Concurrency, log).Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer()
	out, err := renderer.Render(results, validateFormat)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)

	if validateOutput != "" {
		if err := renderer.WriteReport(appFs, results, validateOutput); err != nil {
			return err
		}
		progress("✓ Report saved to: %s", validateOutput)
	}

	if runner.Failed(results) {
		return errValidationFailed
	}
	progress("✓ All campaigns valid")
	return nil
}
