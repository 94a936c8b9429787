package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
)

var errInvalidSkeleton = errors.New("skeleton has validation problems")

var skeletonValidateFormat string

var skeletonValidateCmd = &cobra.Command{
	Use:   "skeleton:validate [file.skl]",
	Short: "Check a skeleton's markup, scale, animation and mirroring",
	Long: `Parse a skeleton file and report every problem found: missing or
duplicate chain markup, typo names, scaled or animated joints, joints whose
parent is outside their chain and left/right joints that do not mirror.

Exits non-zero when problems are found.

Examples:
  rigkit skeleton:validate hero.skl
  rigkit skeleton:validate hero.skl --format markdown
  rigkit skeleton:validate hero.skl --format json | jq '.counts'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(skeletonValidateFormat)
		if err != nil {
			return err
		}
		path := cfg.Paths.Skeleton
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("a skeleton file is required (or set paths.skeleton in the config)")
		}

		svc, err := newService(serviceOptions{noHistory: true})
		if err != nil {
			return err
		}
		h, err := svc.ValidateSkeleton(cmd.Context(), path)
		if h == nil {
			return err
		}
		dto := presentation.FromHierarchy(path, h)
		if ferr := formatter(cmd).FormatSkeletonReport(dto, format); ferr != nil {
			return ferr
		}
		if err != nil {
			return err
		}
		if !dto.Valid() {
			return errInvalidSkeleton
		}
		return nil
	},
}

func init() {
	skeletonValidateCmd.Flags().StringVarP(&skeletonValidateFormat, "format", "f", "text", "output format: text, json or markdown")
	rootCmd.AddCommand(skeletonValidateCmd)
}
