package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/matchstats-cli/internal/config"
	"github.com/KaramelBytes/matchstats-cli/internal/dataset"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "matchstats",
	Short: "MatchStats CLI: statistics over auto-battler match records",
	Long: `MatchStats reads a parquet table of match-round records and reports how damage,
leftover gold and player level relate to the final placement, with charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.matchstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// settings returns the loaded configuration, loading defaults when the
// root command was executed without OnInitialize (tests).
func settings() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// loadDataset resolves the dataset path from args or config and loads it once.
func loadDataset(cmd *cobra.Command, args []string) (*dataset.Dataset, *cfgpkg.Global, error) {
	c, err := settings()
	if err != nil {
		return nil, nil, err
	}
	path := c.Dataset
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if path == "" {
		path = dataset.DefaultPath
	}
	opt := dataset.DefaultOptions()
	opt.UnitsColumn = c.UnitsColumn
	opt.Logger = log.WithField("dataset", path)

	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded '%s': %d rows, %d columns\n", ds.Name, ds.Rows(), ds.Columns())
	return ds, c, nil
}
