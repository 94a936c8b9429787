package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
)

var rigTypesFormat string

var rigTypesCmd = &cobra.Command{
	Use:   "rig:types",
	Short: "List the registered component types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := presentation.ParseFormat(rigTypesFormat)
		if err != nil {
			return err
		}
		svc, err := newService(serviceOptions{noHistory: true})
		if err != nil {
			return err
		}
		dtos := presentation.FromDefinitions(svc.Registry().Definitions())
		return formatter(cmd).FormatTypes(dtos, format)
	},
}

func init() {
	rigTypesCmd.Flags().StringVarP(&rigTypesFormat, "format", "f", "text", "output format: text or json")
	rootCmd.AddCommand(rigTypesCmd)
}
