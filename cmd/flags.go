package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/config"
	"github.com/ncomes/MechanicalArt-sub001/internal/flags"
)

var flagsListCmd = &cobra.Command{
	Use:   "flags:list",
	Short: "Show feature flags and their current values",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all := flags.New(cfg.Flags).All()
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-16s %t\n", name, all[name]); err != nil {
				return err
			}
		}
		return nil
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "flags:set <name> <true|false>",
	Short: "Enable or disable a feature flag in the config file",
	Long: `Write a feature flag to the config file, keeping its comments.

Known flags:
  skeleton-cache  cache parsed skeleton files between builds
  strict-build    exit non-zero when any fragment fails
  history-prune   keep only history.keep records per rig

Examples:
  rigkit flags:set strict-build true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := flags.Defaults()[name]; !ok {
			return fmt.Errorf("unknown flag %q", name)
		}
		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("flag value must be true or false, got %q", args[1])
		}
		if err := config.SaveFlag(configPath(), name, enabled); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %t (%s)\n", name, enabled, configPath())
		return err
	},
}

func init() {
	rootCmd.AddCommand(flagsListCmd)
	rootCmd.AddCommand(flagsSetCmd)
}
