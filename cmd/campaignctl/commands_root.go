package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/sourceplane/campaignctl/internal/catalog"
	"github.com/sourceplane/campaignctl/internal/config"
	"github.com/sourceplane/campaignctl/internal/loader"
	"github.com/sourceplane/campaignctl/internal/logging"
	"github.com/sourceplane/campaignctl/internal/schema"
	"github.com/sourceplane/campaignctl/internal/settings"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned when a command has already reported invalid campaigns
var errValidationFailed = errors.New("validation failed")

var (
	configDir   string
	catalogFile string
	logLevel    string
	logJSON     bool
	changedOnly bool
	baseBranch  string

	cfg *config.Config
	log zerolog.Logger
)

var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:           "campaignctl",
	Short:         "Campaign definition validator",
	Long:          "campaignctl validates campaign definition YAML against the engine's catalog and loads it into an immutable campaign model",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(appFs, configDir)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		log, err = logging.New(os.Stderr, cfg.LogLevel, logJSON)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing campaignctl.yaml")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Catalog file (overrides the config file's catalog)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace/debug/info/warn/error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	registerValidateCommand(rootCmd)
	registerInspectCommand(rootCmd)
	registerSettingsCommand(rootCmd)
	registerCatalogCommand(rootCmd)
	registerWatchCommand(rootCmd)
}

// catalogPath resolves the catalog file; a relative config value is relative to the config directory
func catalogPath() string {
	if catalogFile != "" {
		return catalogFile
	}
	if filepath.IsAbs(cfg.Catalog) {
		return cfg.Catalog
	}
	return filepath.Join(configDir, cfg.Catalog)
}

func loadCatalog() (*catalog.Catalog, error) {
	path := catalogPath()
	cat, err := catalog.Load(appFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("catalog loaded")
	return cat, nil
}

func newLoader() (*loader.Loader, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	v, err := schema.NewValidator(cat, schema.Options{
		Settings:        settings.DefaultRegistry(),
		Versions:        schema.VersionRange{Min: cfg.Engine.MinVersion, Max: cfg.Engine.MaxVersion},
		MaxSquadronSize: cfg.Engine.MaxSquadronSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}
	return loader.New(appFs, v), nil
}
