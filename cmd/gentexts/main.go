package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/internal/archive"
	"pkg.jsn.cam/gentexts/internal/backend"
	"pkg.jsn.cam/gentexts/internal/config"
	"pkg.jsn.cam/gentexts/internal/logging"
	"pkg.jsn.cam/gentexts/internal/worldtime"
)

var (
	// Global flags
	envFiles    []string
	seed        uint64
	quotaBytes  int
	archivePath string
	logLevel    string
	logFormat   string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gentexts",
	Short: "Random pseudo-text generator with a small HTTP backend",
	Long: `gentexts generates lists of random lowercase texts, serves them over
HTTP together with a world time lookup, and can show them in the terminal
on timers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFiles...)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSliceVar(&envFiles, "env-file", nil, "env files to load (default ./.env when present)")
	pf.Uint64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	pf.IntVar(&quotaBytes, "quota-bytes", 0, "byte budget for live generated texts, 0 is unlimited")
	pf.StringVar(&archivePath, "archive", "", "bbolt file for text list history, empty keeps it in memory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (json, console)")

	rootCmd.AddCommand(serveCmd, showCmd, generateCmd, dumpCmd, clientCmd)
}

// applyFlagOverrides lets explicitly set flags win over the environment
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("quota-bytes") {
		cfg.QuotaBytes = quotaBytes
	}
	if flags.Changed("archive") {
		cfg.ArchivePath = archivePath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
}

// newBackend wires a backend from the loaded config
func newBackend() (*backend.Backend, error) {
	clock, err := worldtime.NewClient(cfg.WorldTimeURL, cfg.HTTPTimeout, logger)
	if err != nil {
		return nil, err
	}

	store, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		return nil, err
	}

	return backend.New(backend.Config{
		Seed:       cfg.Seed,
		QuotaBytes: cfg.QuotaBytes,
		Timezone:   cfg.Timezone,
	}, clock, store, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
