package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/focustrack/internal/api"
	"github.com/hammamikhairi/focustrack/internal/conversation"
	"github.com/hammamikhairi/focustrack/internal/logger"
	"github.com/hammamikhairi/focustrack/internal/timer"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	var withSound bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timer headless behind a JSON HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := opts.log
			gin.SetMode(ginMode(log))

			// No terminal to print to; notifications go to the log.
			notifyLog := log.Named("notify")
			notifier := conversation.NewCLINotifier(notifyLog, func(format string, a ...interface{}) {
				notifyLog.Info(format, a...)
			}).Plain()

			engineOpts := []timer.Option{timer.WithNotifier(notifier)}
			if withSound {
				engineOpts = append(engineOpts, timer.WithCuePlayer(cuePlayer(opts)))
			}

			a, err := openApp(ctx, opts, engineOpts...)
			if err != nil {
				return err
			}

			srv := api.NewServer(a.engine, a.settings, a.history, log.Named("api"))
			runErr := srv.Run(ctx, addr)
			stop()

			if err := a.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7425", "listen address")
	cmd.Flags().BoolVar(&withSound, "sound", false, "play the completion cue on this machine")
	return cmd
}

// ginMode keeps gin's route dump and request logging for verbose runs only.
func ginMode(log *logger.Logger) string {
	if log.GetLevel() == logger.LevelVerbose {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
