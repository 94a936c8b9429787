package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
)

var (
	historyRig     string
	historyLimit   int
	historyAll     bool
	historyRestore string
	historyOut     string
	historyFormat  string
)

var rigHistoryCmd = &cobra.Command{
	Use:   "rig:history",
	Short: "List or restore recorded builds",
	Long: `List the builds, saves, reloads and checks recorded for a rig, newest
first. Every record keeps the rig document it ran against, so an earlier
document can be written back out with --restore.

Examples:
  # Recent records for the configured rig name
  rigkit rig:history

  # Every rig, last 5 records
  rigkit rig:history --all --limit 5

  # Restore a recorded document
  rigkit rig:history --restore 3f2c... --out hero_restored.rig`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := presentation.ParseFormat(historyFormat)
		if err != nil {
			return err
		}
		svc, err := newService(serviceOptions{})
		if err != nil {
			return err
		}

		if historyRestore != "" {
			if historyOut == "" {
				return errors.New("--out is required with --restore")
			}
			doc, err := svc.Restore(historyRestore, historyOut)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %s (%d components)\n", historyOut, len(doc.Components))
			return err
		}

		name := historyRig
		if name == "" && !historyAll {
			name = cfg.Build.Name
		}
		records, err := svc.History(name, historyLimit)
		if err != nil {
			return err
		}
		return formatter(cmd).FormatHistory(presentation.FromRecords(records), format)
	},
}

func init() {
	rigHistoryCmd.Flags().StringVar(&historyRig, "rig", "", "rig name (default: build.name)")
	rigHistoryCmd.Flags().BoolVar(&historyAll, "all", false, "list records of every rig")
	rigHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum records to list (0 for all)")
	rigHistoryCmd.Flags().StringVar(&historyRestore, "restore", "", "record id to restore")
	rigHistoryCmd.Flags().StringVarP(&historyOut, "out", "o", "", "file the restored document is written to")
	rigHistoryCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format: text or json")
	rigHistoryCmd.MarkFlagsMutuallyExclusive("rig", "all")
	rootCmd.AddCommand(rigHistoryCmd)
}
