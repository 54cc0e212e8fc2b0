package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/matchstats-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set MatchStats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dataset: %s\n", c.Dataset)
		fmt.Fprintf(out, "units_column: %s\n", c.UnitsColumn)
		fmt.Fprintf(out, "charts_dir: %s\n", c.ChartsDir)
		fmt.Fprintf(out, "render_charts: %t\n", c.RenderCharts)
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := settings()
		if err != nil {
			return err
		}
		if err := apply(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func apply(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "dataset":
		c.Dataset = val
	case "units_column":
		c.UnitsColumn = val
	case "charts_dir":
		c.ChartsDir = val
	case "render_charts":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for render_charts: %v", val)
		}
		c.RenderCharts = b
	case "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for sample_rows: %v", val)
		}
		c.SampleRows = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
