//go:build gui

package main

import (
	"context"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/metcalfc/lnr/internal/gui"
)

func main() {
	cmd := newRootCmd("glnr", "Glnr - Desktop Line Reader", runGUI)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGUI(ctx context.Context, env *runEnv) error {
	a := app.New()
	w := gui.New(ctx, a, gui.Options{
		Ingest:       env.cfg.IngestOptions(),
		ContinueKeys: env.cfg.ContinueKeys,
		Watch:        env.cfg.Watch,
		Logger:       env.log,
	})

	if env.source != nil {
		w.Ingest(env.source)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(a.Quit)
		case <-done:
		}
	}()

	w.Window().ShowAndRun()
	env.log.Info().Msg("bye")
	return nil
}
