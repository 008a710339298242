package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastfm/internal/config"
	"github.com/jfmyers9/lastfm/pkg/lastfm"
	"github.com/jfmyers9/lastfm/pkg/rescache"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Last.fm command line client",
	Long: `lastfm is a command line client for the Last.fm API.

It can authenticate against Last.fm, inspect user profiles, friends,
top charts and listening history, and scrobble tracks.

Configuration lives in ~/.config/lastfm/config.yaml; run 'lastfm auth'
to set up API credentials and a session key.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the CLI logger. Debug output goes to stderr so command
// output stays pipeable.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newClient builds an API client from the loaded configuration.
func newClient(cfg *config.Config) (*lastfm.Client, error) {
	if cfg.LastFM.APIKey == "" || cfg.LastFM.APISecret == "" {
		return nil, fmt.Errorf("no API credentials configured; run 'lastfm auth' first")
	}

	logger := newLogger()

	var cache lastfm.ResponseCache
	if cfg.Cache.Path != "" {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		sqliteCache, err := rescache.NewSQLite(cfg.Cache.Path, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to open response cache: %w", err)
		}
		cache = sqliteCache
	}

	return lastfm.NewClient(lastfm.Config{
		APIKey:     cfg.LastFM.APIKey,
		APISecret:  cfg.LastFM.APISecret,
		SessionKey: cfg.LastFM.SessionKey,
		Logger:     &logger,
		Cache:      cache,
	})
}
