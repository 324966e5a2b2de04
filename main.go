//go:build !gui

package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/metcalfc/lnr/internal/tui"
	"golang.org/x/sync/errgroup"
)

func main() {
	cmd := newRootCmd("lnr", "Lnr - Terminal Line Reader", runTUI)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(ctx context.Context, env *runEnv) error {
	m := tui.New(ctx, tui.Options{
		Ingest:       env.cfg.IngestOptions(),
		ContinueKeys: env.cfg.ContinueKeys,
		StartDir:     env.cfg.StartDir,
		Watch:        env.cfg.Watch,
		Logger:       env.log,
	}, env.source)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if env.fromStdin {
		// stdin carries the text, keys come from the terminal
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, opts...)

	g, gctx := errgroup.WithContext(ctx)
	done, finished := context.WithCancel(gctx)
	g.Go(func() error {
		defer finished()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-done.Done()
		p.Quit()
		return nil
	})

	if err := g.Wait(); err != nil {
		env.log.Error().Err(err).Msg("program exited with error")
		return err
	}
	env.log.Info().Msg("bye")
	return nil
}
