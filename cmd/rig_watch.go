package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ncomes/MechanicalArt-sub001/internal/application/rigging"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/presentation"
	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
)

var (
	rigWatchFlags    buildFlags
	rigWatchProgress bool
)

var rigWatchCmd = &cobra.Command{
	Use:   "rig:watch",
	Short: "Rebuild a rig whenever its skeleton or rig document changes",
	Long: `Build the rig, then watch the skeleton and rig document and rebuild
after every change. The skeleton cache entry is dropped before each rebuild.

Stop with Ctrl+C.

Examples:
  rigkit rig:watch -s hero.skl -r hero.rig
  rigkit rig:watch -s hero.skl -r hero.rig --progress`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := presentation.ParseFormat(rigWatchFlags.format)
		if err != nil {
			return err
		}
		req, err := rigWatchFlags.request()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var events *pubsub.Broker[rig.Event]
		if rigWatchProgress {
			events = pubsub.NewBrokerWithBuffer[rig.Event](256)
			defer events.Close()
			listener := pubsub.NewContinuousListener(ctx, events)
			w := cmd.ErrOrStderr()
			go listener.Forward(func(ev pubsub.Event[rig.Event]) {
				_, _ = fmt.Fprintln(w, progressLine(ev))
			})
		}

		svc, err := newService(serviceOptions{events: events})
		if err != nil {
			return err
		}
		out := formatter(cmd)
		return svc.Watch(ctx, req, func(sess *rigging.Session, err error) {
			if sess != nil {
				dto := presentation.FromBuild(sess.Rig, sess.Skeleton, sess.RigPath, sess.Result, sess.Elapsed)
				_ = out.FormatBuild(dto, format)
			}
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "build error: %v\n", err)
			}
		})
	},
}

func progressLine(ev pubsub.Event[rig.Event]) string {
	p := ev.Payload
	switch ev.Type {
	case pubsub.PhaseStartedEvent:
		return fmt.Sprintf("%-9s started", p.Phase)
	case pubsub.PhaseFinishedEvent:
		return fmt.Sprintf("%-9s finished", p.Phase)
	case pubsub.FragmentFailedEvent:
		return fmt.Sprintf("%-9s failed   %s: %v", p.Phase, p.Key, p.Err)
	case pubsub.FragmentSkippedEvent:
		return fmt.Sprintf("%-9s skipped  %s", p.Phase, p.Key)
	default:
		return fmt.Sprintf("%-9s built    %s", p.Phase, p.Key)
	}
}

func init() {
	rigWatchFlags.register(rigWatchCmd)
	rigWatchCmd.Flags().BoolVar(&rigWatchProgress, "progress", false, "print every build event to stderr")
	rootCmd.AddCommand(rigWatchCmd)
}
