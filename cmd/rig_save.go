package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	rigSaveFlags buildFlags
	rigSaveOut   string
)

var rigSaveCmd = &cobra.Command{
	Use:   "rig:save",
	Short: "Build a rig and serialize it back to a rig document",
	Long: `Build the rig, then serialize it with the version bumped to the next
whole number.

The document is written atomically. Without --out the input document is
replaced.

Examples:
  rigkit rig:save -s hero.skl -r hero.rig
  rigkit rig:save -s hero.skl -r hero.rig --out hero_v2.rig`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService(serviceOptions{})
		if err != nil {
			return err
		}
		sess, err := rigSaveFlags.build(cmd, svc)
		if err != nil {
			return err
		}
		out := rigSaveOut
		if out == "" {
			out = sess.RigPath
		}
		doc, err := svc.Save(cmd.Context(), sess, out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (version %s, %d components)\n",
			out, strconv.FormatFloat(doc.Version, 'f', -1, 64), len(doc.Components))
		return err
	},
}

func init() {
	rigSaveFlags.register(rigSaveCmd)
	rigSaveCmd.Flags().StringVarP(&rigSaveOut, "out", "o", "", "output rig document (default: the input document)")
	rootCmd.AddCommand(rigSaveCmd)
}
