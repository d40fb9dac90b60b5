// Package cmd implements the CLI commands for crosslister.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdevries/crosslister/internal/config"
	"github.com/jdevries/crosslister/internal/credentials"
	"github.com/jdevries/crosslister/pkg/listing"
	"github.com/jdevries/crosslister/pkg/logger"
	"github.com/jdevries/crosslister/pkg/rules"
	domain "github.com/jdevries/crosslister/pkg/types"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "crosslister",
	Short: "Post second-hand listings to multiple marketplaces",
	Long: "crosslister reads listings from a CSV file and posts them to Dutch and\n" +
		"Belgian second-hand marketplaces (Marktplaats, 2dehands, Facebook\n" +
		"Marketplace, Vinted) through a real browser session.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		StringSlice("platforms", nil, "platforms to post to (default: all from config)")
	rootCmd.PersistentFlags().Bool("headless", true, "run the browser headless")
	rootCmd.PersistentFlags().Int("max-parallel", 0, "max concurrent posts (0: use config)")

	cobra.CheckErr(viper.BindPFlag("platforms", rootCmd.PersistentFlags().Lookup("platforms")))
	cobra.CheckErr(viper.BindPFlag("headless", rootCmd.PersistentFlags().Lookup("headless")))
	cobra.CheckErr(viper.BindPFlag("max_parallel", rootCmd.PersistentFlags().Lookup("max-parallel")))

	viper.SetEnvPrefix("CROSSLISTER")
	viper.AutomaticEnv()
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies flag and environment
// overrides bound through viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if platforms := viper.GetStringSlice("platforms"); len(platforms) > 0 {
		cfg.Listings.Platforms = platforms
	}
	if viper.IsSet("headless") {
		cfg.Browser.Headless = viper.GetBool("headless")
	}
	if n := viper.GetInt("max_parallel"); n > 0 {
		cfg.Dispatch.MaxParallel = n
	}

	return cfg, nil
}

// inputs bundles everything loaded from the listing input files.
type inputs struct {
	platforms  []domain.Platform
	creds      credentials.Set
	categories *rules.CategoryMap
	listings   []*domain.ListingRecord
}

func loadInputs(cfg *config.Config, log *slog.Logger) (*inputs, error) {
	platforms, err := cfg.Listings.EnabledPlatforms()
	if err != nil {
		return nil, err
	}

	// A missing credentials file is not fatal: the dispatcher reports
	// missing credentials per listing/platform pair, and check never logs in.
	creds, err := credentials.Load(cfg.Listings.CredentialsPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("credentials file not found, all platforms will report missing credentials",
			"path", cfg.Listings.CredentialsPath)
		creds = credentials.Set{}
	} else if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	categories, err := rules.LoadCategoryMap(cfg.Listings.CategoryMapPath)
	if err != nil {
		return nil, fmt.Errorf("loading category map: %w", err)
	}

	listings, err := listing.LoadListings(cfg.Listings.CSVPath, cfg.Listings.ImagesDir, platforms)
	if err != nil {
		return nil, err
	}

	log.Info("inputs loaded",
		"listings", len(listings),
		"platforms", len(platforms),
	)
	return &inputs{
		platforms:  platforms,
		creds:      creds,
		categories: categories,
		listings:   listings,
	}, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	return logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
}
