package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/tracking"
)

func newTrackCommand(opts *globalOptions) *cobra.Command {
	var token, recommendation, action string

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Send one interaction event to the recommendation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := tracking.ParseAction(action)
			if err != nil {
				return err
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			tracker, closeStore := newTracker(cfg, log)
			defer closeStore()

			outcome := tracker.Track(cmd.Context(), tracking.Event{
				TokenID:          token,
				RecommendationID: recommendation,
				Action:           act,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", act, outcome)
			if outcome == tracking.OutcomeFailed {
				return fmt.Errorf("tracking call failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "token_id of the interaction")
	cmd.Flags().StringVar(&recommendation, "recommendation", "", "recommendation_id from the service")
	cmd.Flags().StringVar(&action, "action", string(tracking.ActionClicked), "clicked or converted")

	return cmd
}
