package cmd

import (
	"github.com/KaramelBytes/matchstats-cli/internal/inspect"
	"github.com/spf13/cobra"
)

var inspectRow int

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print the first unit of a record from the units column",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		inspect.Dump(cmd.OutOrStdout(), ds, inspectRow, log)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectRow, "row", 0, "0-based record index")
}
