package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/banner"
	"github.com/omnis-dev/omnis/internal/flow"
)

func newBannerCommand(opts *globalOptions) *cobra.Command {
	var scale float64

	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Drive the promotional banner from stdin",
		Long: `Reads one command per line from stdin:

  tap            expand the collapsed banner
  collapse       collapse the expanded banner
  close          dismiss the banner
  apply          "Apply Now" on the expanded banner
  more           "Tell me more" on the expanded banner
  swipe <dy>     vertical swipe; positive is upward
  state          print the current state
  wait <dur>     sleep, e.g. "wait 2s"
  quit           stop and exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if scale <= 0 {
				return fmt.Errorf("--scale must be positive, got %v", scale)
			}

			tracker, closeStore := newTracker(cfg, log)
			defer closeStore()
			defer tracker.Wait()

			bcfg := bannerConfig(cfg.Banner)
			bcfg.InitialDelay = scaleDuration(bcfg.InitialDelay, scale)
			bcfg.AutoDismiss = scaleDuration(bcfg.AutoDismiss, scale)
			bcfg.Reappear = scaleDuration(bcfg.Reappear, scale)

			return runBanner(cmd.InOrStdin(), cmd.OutOrStdout(), bcfg, newFlowManager(tracker, log), log)
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", 1, "divide every banner timing by this factor")

	return cmd
}

func scaleDuration(d time.Duration, scale float64) time.Duration {
	return time.Duration(float64(d) / scale)
}

// lockedWriter serializes writes from the input loop and timer callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func runBanner(in io.Reader, out io.Writer, cfg banner.Config, flows *flow.Manager, log *slog.Logger) error {
	w := &lockedWriter{w: out}

	ctl := banner.NewController(cfg, flows,
		banner.WithLogger(log),
		banner.WithObserver(func(s banner.State) { w.printf("banner: %s\n", s) }),
	)
	ctl.Start()
	defer ctl.Stop()

	w.printf("banner: waiting %s before showing\n", cfg.InitialDelay)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "tap":
			ctl.Tap()
		case "collapse":
			ctl.Collapse()
		case "close":
			ctl.Close()
		case "apply", "more":
			before, _ := flows.Latest()
			if cmd == "apply" {
				ctl.Apply()
			} else {
				ctl.ViewMore()
			}
			if s, ok := flows.Latest(); ok && s.ID != before.ID {
				w.printf("flow: opened %s for %s (%s)\n", s.ID, s.CardID, s.Recommendation.Title)
			}
		case "swipe":
			if len(fields) != 2 {
				w.printf("usage: swipe <dy>\n")
				continue
			}
			dy, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				w.printf("invalid distance %q\n", fields[1])
				continue
			}
			ctl.Swipe(0, -dy)
		case "state":
			w.printf("banner: %s (timer pending: %t)\n", ctl.State(), ctl.TimerPending())
		case "wait":
			if len(fields) != 2 {
				w.printf("usage: wait <duration>\n")
				continue
			}
			d, err := time.ParseDuration(fields[1])
			if err != nil {
				w.printf("invalid duration %q\n", fields[1])
				continue
			}
			time.Sleep(d)
		case "quit", "exit":
			return nil
		default:
			w.printf("unknown command %q\n", fields[0])
		}
	}
	return scanner.Err()
}
