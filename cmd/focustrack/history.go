package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/focustrack/internal/storage"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent guest sessions and today's totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := storageConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Authenticated() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "note: new sessions are saved to your account; showing local guest history only")
			}

			store, err := storage.OpenGuestStore(cfg.GuestPath(), opts.log.Named("guest"))
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			lines, err := historyLines(ctx, store, limit, time.Now())
			if err != nil {
				return err
			}
			for _, line := range lines {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show (0 for all)")
	return cmd
}
