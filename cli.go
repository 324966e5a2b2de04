package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/metcalfc/lnr/internal/config"
	"github.com/metcalfc/lnr/internal/ingest"
	"github.com/metcalfc/lnr/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// runEnv is everything a front end needs to start.
type runEnv struct {
	cfg       *config.Config
	log       zerolog.Logger
	source    ingest.Source // nil when nothing was given on the command line
	fromStdin bool
}

type runFunc func(ctx context.Context, env *runEnv) error

type rootFlags struct {
	configFile        string
	watch             bool
	maxBytes          int64
	normalizeNewlines bool
	debug             bool
}

func newRootCmd(name, short string, run runFunc) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   name + " [file]",
		Short: short,
		Long: short + `

Reveals a plain text file one line at a time. Press enter or click
to move to the next line; progress is shown above the text.`,
		Example: fmt.Sprintf(`  %[1]s notes.txt               Read a file
  %[1]s --watch notes.txt       Reload when the file changes
  cat notes.txt | %[1]s         Read from stdin
  %[1]s                         Pick a file interactively`, name),
		Args:         cobra.MaximumNArgs(1),
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			log, closeLog := logging.Open(cfg.LogFile, cfg.LogLevel, flags.debug)
			defer closeLog()

			src, fromStdin := resolveSource(args, os.Stdin)
			log.Info().
				Str("version", version).
				Bool("stdin", fromStdin).
				Bool("watch", cfg.Watch).
				Msg("starting")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, &runEnv{cfg: cfg, log: log, source: src, fromStdin: fromStdin})
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("%s %s (commit: %s, built: %s)\n", name, version, commit, date))

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/lnr/config.yaml)")
	f.BoolVarP(&flags.watch, "watch", "w", false, "reload the file when it changes on disk")
	f.Int64Var(&flags.maxBytes, "max-bytes", 0, "refuse files larger than this many bytes (0 = no limit)")
	f.BoolVar(&flags.normalizeNewlines, "normalize-newlines", false, `treat "\r\n" and "\r" as line breaks`)
	f.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	return cmd
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configFile != "" {
		cfg, err = config.LoadFile(flags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("watch") {
		cfg.Watch = flags.watch
	}
	if f.Changed("max-bytes") {
		cfg.MaxBytes = flags.maxBytes
	}
	if f.Changed("normalize-newlines") {
		cfg.NormalizeNewlines = flags.normalizeNewlines
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSource picks the file argument, then piped stdin. It returns nil
// when the user should pick a file interactively.
func resolveSource(args []string, stdin *os.File) (ingest.Source, bool) {
	if len(args) > 0 {
		return ingest.FileSource{Path: args[0]}, false
	}
	stat, err := stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return nil, false
	}
	return ingest.NewReaderSource("stdin", "text/plain", stdin), true
}
