package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/application/rigging"
)

var rigDiffCmd = &cobra.Command{
	Use:   "rig:diff <a.rig> <b.rig>",
	Short: "Show the differences between two rig documents",
	Long: `Compare two rig documents after normalizing them, so formatting and
key order do not show up as changes.

Examples:
  rigkit rig:diff hero.rig hero_v2.rig`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		diffs, err := rigging.Diff(args[0], args[1])
		if err != nil {
			return err
		}
		if !rigging.Changed(diffs) {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no differences")
			return err
		}
		return formatter(cmd).FormatDiff(diffs)
	},
}

func init() {
	rootCmd.AddCommand(rigDiffCmd)
}
