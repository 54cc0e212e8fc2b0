package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns [file]",
	Short: "List the dataset columns and show the first rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Columns:")
		for _, name := range ds.ColumnNames() {
			fmt.Fprintf(out, "- %s\n", name)
		}
		for _, name := range ds.Skipped {
			log.WithField("column", name).Debug("nested column not shown in preview")
		}
		if ds.Frame.Ncol() == 0 {
			return nil
		}
		fmt.Fprintf(out, "\nFirst %d rows:\n", min(c.SampleRows, ds.Rows()))
		fmt.Fprintln(out, ds.Head(c.SampleRows).String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
