package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
)

var rigCheckFlags buildFlags

var rigCheckCmd = &cobra.Command{
	Use:   "rig:check",
	Short: "Report components built by an older component version",
	Long: `Build the rig, then compare the version each component was built with
against the registered component types.

Exits non-zero when any component is stale. Run rig:save after upgrading to
rebuild the document with current versions.

Examples:
  rigkit rig:check -s hero.skl -r hero.rig
  rigkit rig:check --format json | jq '.[].component'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := presentation.ParseFormat(rigCheckFlags.format)
		if err != nil {
			return err
		}
		svc, err := newService(serviceOptions{})
		if err != nil {
			return err
		}
		// Only the stale list is printed.
		req, err := rigCheckFlags.request()
		if err != nil {
			return err
		}
		sess, err := svc.Build(cmd.Context(), req)
		if err != nil {
			return err
		}
		stale := presentation.FromStale(svc.Check(cmd.Context(), sess))
		if err := formatter(cmd).FormatStale(stale, format); err != nil {
			return err
		}
		if len(stale) > 0 {
			return fmt.Errorf("%d stale components", len(stale))
		}
		return nil
	},
}

func init() {
	rigCheckFlags.register(rigCheckCmd)
	rootCmd.AddCommand(rigCheckCmd)
}
