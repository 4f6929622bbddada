package commands

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/feed"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newFeedCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool
	var userID string

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Fetch recommendations and print the derived cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if userID != "" {
				cfg.Feed.UserID = userID
			}

			f := feed.NewFeed(newFeedBuilder(cfg, log))
			defer f.Close()
			return runFeed(cmd, f, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	cmd.Flags().StringVar(&userID, "user", "", "user id (overrides feed.user_id)")

	return cmd
}

func runFeed(cmd *cobra.Command, f *feed.Feed, asJSON bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-f.Load(ctx):
	case <-ctx.Done():
		return ctx.Err()
	}

	snap := f.Snapshot()
	out := cmd.OutOrStdout()
	if snap.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), snap.Message())
		return snap.Err
	}

	if asJSON {
		data, err := json.MarshalIndent(snap.Cards, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding cards: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(snap.Cards) == 0 {
		return errors.New("no cards")
	}
	renderCards(out, snap.Cards, isTerminal(out))
	return nil
}
