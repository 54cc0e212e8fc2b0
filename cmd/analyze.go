package cmd

import (
	"fmt"

	"github.com/KaramelBytes/matchstats-cli/internal/analysis"
	"github.com/KaramelBytes/matchstats-cli/internal/dataset"
	"github.com/KaramelBytes/matchstats-cli/internal/inspect"
	"github.com/KaramelBytes/matchstats-cli/internal/plot"
	"github.com/KaramelBytes/matchstats-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaNoCharts  bool
	anaChartsDir string
	anaInspect   bool
	anaJSONPath  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the three placement analyses and render charts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		if err := dataset.DeriveTop4(ds); err != nil {
			return err
		}

		rep, err := analysis.NewEngine(log).Run(cmd.Context(), ds)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprint(out, rep.Text())

		if anaInspect {
			fmt.Fprintln(out)
			inspect.Dump(out, ds, 0, log)
		}

		if anaJSONPath != "" {
			b, err := rep.JSON()
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if err := utils.SafeWriteFile(anaJSONPath, b); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote report to %s\n", anaJSONPath)
		}

		render := c.RenderCharts
		if cmd.Flags().Changed("no-charts") {
			render = !anaNoCharts
		}
		if !render {
			return nil
		}
		dir := c.ChartsDir
		if anaChartsDir != "" {
			dir = anaChartsDir
		}
		g := plot.NewGallery(log)
		for _, err := range g.AddReport(rep) {
			log.WithError(err).Warn("chart skipped")
		}
		paths, err := g.Flush(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(out, "✓ Wrote chart %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip chart rendering")
	analyzeCmd.Flags().StringVar(&anaChartsDir, "charts-dir", "", "directory for chart PNGs (overrides config)")
	analyzeCmd.Flags().BoolVar(&anaInspect, "inspect", false, "also print the first unit of the first record")
	analyzeCmd.Flags().StringVar(&anaJSONPath, "json", "", "optional path to write the report as JSON")
}
