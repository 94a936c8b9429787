package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncomes/MechanicalArt-sub001/internal/application/rigging"
	"github.com/ncomes/MechanicalArt-sub001/internal/config"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/sqlite"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
	"github.com/ncomes/MechanicalArt-sub001/internal/paths"
	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
	"github.com/ncomes/MechanicalArt-sub001/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	// cfgErr is set by initConfig and reported by the first command.
	cfgErr error

	projectFlag string
	projectDir  string
	verbose     bool
	logFile     string
	noColor     bool

	provider *tracing.Provider
	// closers run after the command, newest first.
	closers []func()
)

var rootCmd = &cobra.Command{
	Use:   "rigkit",
	Short: "Build, save and validate character rigs",
	Long: `rigkit builds animation rigs from a serialized rig document and a
skeleton file, validates skeleton markup, and keeps a history of every build
so earlier documents can be restored.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(teardown)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .rigkit/config.yaml, then ~/.config/rigkit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "",
		"project directory holding .rigkit (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log to stderr")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"append debug logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
}

func initConfig() {
	projectDir = paths.ResolveProjectDir(projectFlag)

	v := viper.GetViper()
	config.SetDefaults(v)
	v.SetEnvPrefix("RIGKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .rigkit/config.yaml (project)
		// 2. ~/.config/rigkit/config.yaml (user)
		projectConfig := paths.ConfigFile(projectDir)
		userConfig := paths.UserConfigFile()
		switch {
		case fileExists(projectConfig):
			v.SetConfigFile(projectConfig)
		case userConfig != "" && fileExists(userConfig):
			v.SetConfigFile(userConfig)
		default:
			// No config anywhere: create the project default so later
			// --remember calls have a file to update.
			if err := config.WriteDefaultConfig(projectConfig); err == nil {
				v.SetConfigFile(projectConfig)
			}
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				cfgErr = fmt.Errorf("reading config: %w", err)
				return
			}
		}
	}
	cfg, cfgErr = config.Load(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// configPath is the file --remember writes to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return paths.ConfigFile(projectDir)
}

func setup(cmd *cobra.Command, _ []string) error {
	switch {
	case logFile != "":
		cleanup, err := log.Init(logFile)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		closers = append(closers, cleanup)
	case verbose:
		log.InitWriter(cmd.ErrOrStderr(), log.LevelDebug)
	default:
		log.SetEnabled(false)
	}
	if cfgErr != nil {
		return cfgErr
	}
	log.Debug(log.CatConfig, "loaded config", "file", viper.ConfigFileUsed(), "project", projectDir)

	tc := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	}
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = paths.TracesFile(projectDir)
		if err := os.MkdirAll(filepath.Dir(tc.FilePath), 0o750); err != nil {
			return fmt.Errorf("creating trace directory: %w", err)
		}
	}
	p, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	provider = p
	return nil
}

// teardown runs after every command, including failed ones.
func teardown() {
	if provider != nil {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "shutting down tracing", err)
		}
		provider = nil
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// serviceOptions tunes newService per command.
type serviceOptions struct {
	events    *pubsub.Broker[rig.Event]
	noHistory bool
}

// newService wires the rig service with the history database when enabled.
// The database is closed by teardown.
func newService(opts serviceOptions) (*rigging.RigService, error) {
	o := rigging.Options{Config: cfg, Events: opts.events}
	if provider != nil {
		o.Tracer = provider.Tracer()
	}
	if cfg.History.Enabled && !opts.noHistory {
		dbPath := cfg.History.DBPath
		if dbPath == "" {
			dbPath = paths.HistoryDB(projectDir)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		db, err := sqlite.NewDB(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		o.History = db.HistoryRepository()
	}
	return rigging.NewRigService(o), nil
}

// formatter writes to the command's stdout, colored only on a terminal.
func formatter(cmd *cobra.Command) *presentation.Formatter {
	out := cmd.OutOrStdout()
	color := false
	width := presentation.DefaultWidth
	if f, ok := out.(*os.File); ok && !noColor && term.IsTerminal(f.Fd()) {
		color = true
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			width = w
		}
	}
	return presentation.NewFormatter(out, presentation.WithColor(color), presentation.WithWidth(width))
}

// buildRequest resolves --skeleton/--rig against the configured paths.
func buildRequest(skeletonPath, rigPath, namespace string) (rigging.BuildRequest, error) {
	if skeletonPath == "" {
		skeletonPath = cfg.Paths.Skeleton
	}
	if rigPath == "" {
		rigPath = cfg.Paths.Rig
	}
	if skeletonPath == "" || rigPath == "" {
		return rigging.BuildRequest{}, errors.New("--skeleton and --rig are required (or set paths.skeleton and paths.rig in the config)")
	}
	return rigging.BuildRequest{Skeleton: skeletonPath, Rig: rigPath, Namespace: namespace}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
