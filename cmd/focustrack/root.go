package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Environment variables read at start-up (a .env file is honoured).
const (
	envAPIURL   = "FOCUSTRACK_API_URL"
	envAPIToken = "FOCUSTRACK_API_TOKEN"
	envDataDir  = "FOCUSTRACK_DATA_DIR"
)

const appName = "focustrack"

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	dataDir    string
	verbose    bool
	quiet      bool
	logFile    string
	guest      bool
	noPersist  bool
	cueFile    string

	log     *logger.Logger
	logSink io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Focus timer with breaks, auto-chaining and session history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logSink != nil {
				opts.logSink.Close()
			}
		},
		// Bare "focustrack" starts the interactive timer.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default <user config dir>/focustrack/settings.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", os.Getenv(envDataDir), "directory for the guest session database (env "+envDataDir+")")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable verbose/debug logging")
	flags.BoolVar(&opts.quiet, "quiet", false, "disable all logging")
	flags.StringVar(&opts.logFile, "log-file", ".focustrack-logs/focustrack.log", "file to write logs to (use \"stderr\" to log to console)")
	flags.BoolVar(&opts.guest, "guest", false, "keep sessions local even when API credentials are set")
	flags.StringVar(&opts.cueFile, "cue-file", "", "16-bit mono WAV to play when an interval ends (default: built-in chime)")
	flags.BoolVar(&opts.noPersist, "no-persist", false, "keep completed sessions in memory only")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	return root
}

// setupLogging builds the logger from the flags. Logs go to a file by
// default so the REPL stays clean.
func (o *options) setupLogging() error {
	level := logger.LevelNormal
	if o.verbose {
		level = logger.LevelVerbose
	}
	if o.quiet {
		level = logger.LevelOff
	}

	var out io.Writer = os.Stderr
	if o.logFile != "" && o.logFile != "stderr" {
		if dir := filepath.Dir(o.logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", o.logFile, err)
		} else {
			out = f
			o.logSink = f
		}
	}

	// Third-party libraries log through the std package; keep them off
	// the terminal too.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	o.log = logger.New(level, out)
	return nil
}

// resolveDataDir returns the flag/env value or <user config dir>/focustrack.
func (o *options) resolveDataDir() (string, error) {
	if o.dataDir != "" {
		return o.dataDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}
