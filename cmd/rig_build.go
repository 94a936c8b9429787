package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/application/rigging"
	"github.com/ncomes/MechanicalArt-sub001/internal/config"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
)

// buildFlags are shared by every command that builds a rig first.
type buildFlags struct {
	skeleton  string
	rig       string
	namespace string
	format    string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.skeleton, "skeleton", "s", "", "skeleton file (.skl), default paths.skeleton")
	cmd.Flags().StringVarP(&f.rig, "rig", "r", "", "rig document (.rig), default paths.rig")
	cmd.Flags().StringVarP(&f.namespace, "namespace", "n", "", "namespace to import the skeleton under (overrides build.namespace)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text or json")
}

func (f *buildFlags) request() (rigging.BuildRequest, error) {
	return buildRequest(f.skeleton, f.rig, f.namespace)
}

// build runs a build and prints its summary. A session is returned together
// with ErrBuildFailed so callers can decide whether to continue.
func (f *buildFlags) build(cmd *cobra.Command, svc *rigging.RigService) (*rigging.Session, error) {
	format, err := presentation.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	sess, err := svc.Build(cmd.Context(), req)
	if sess != nil {
		dto := presentation.FromBuild(sess.Rig, sess.Skeleton, sess.RigPath, sess.Result, sess.Elapsed)
		if ferr := formatter(cmd).FormatBuild(dto, format); ferr != nil {
			return sess, ferr
		}
	}
	return sess, err
}

var (
	rigBuildFlags buildFlags
	rememberPaths bool
)

var rigBuildCmd = &cobra.Command{
	Use:   "rig:build",
	Short: "Build a rig from a skeleton and a rig document",
	Long: `Import the skeleton into a fresh scene and build every fragment of the
rig document onto it.

Fragments that fail are reported and the rest of the rig is still built.
With the strict-build flag on, any failure makes the command exit non-zero.

Examples:
  # Build and print a summary
  rigkit rig:build --skeleton hero.skl --rig hero.rig

  # Import under a namespace
  rigkit rig:build -s hero.skl -r hero.rig -n hero

  # Remember the inputs so later commands can omit them
  rigkit rig:build -s hero.skl -r hero.rig --remember
  rigkit rig:check

  # Machine readable summary
  rigkit rig:build -s hero.skl -r hero.rig --format json | jq '.failed'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService(serviceOptions{})
		if err != nil {
			return err
		}
		sess, err := rigBuildFlags.build(cmd, svc)
		if err != nil && !errors.Is(err, rigging.ErrBuildFailed) {
			return err
		}
		if rememberPaths && sess != nil {
			p := config.PathsConfig{Skeleton: sess.Skeleton, Rig: sess.RigPath}
			if serr := config.SavePaths(configPath(), p); serr != nil {
				return fmt.Errorf("remembering paths: %w", serr)
			}
			log.Info(log.CatConfig, "remembered paths", "config", configPath(), "skeleton", p.Skeleton, "rig", p.Rig)
		}
		return err
	},
}

func init() {
	rigBuildFlags.register(rigBuildCmd)
	rigBuildCmd.Flags().BoolVar(&rememberPaths, "remember", false, "save --skeleton and --rig as the config defaults")
	rootCmd.AddCommand(rigBuildCmd)
}
