// Package tui is the terminal front end: a file picker while no file is
// loaded and a line-by-line reading pane once one is.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/metcalfc/lnr/internal/ingest"
	"github.com/metcalfc/lnr/internal/reader"
	"github.com/metcalfc/lnr/internal/watch"
	"github.com/rs/zerolog"
)

const (
	// title + status rows above the reading surface
	headerHeight = 2
	// error/continue hint + help rows below it
	footerHeight = 2
	// rows used by the instructions box and picker chrome
	emptyChrome = 10

	progressWidth = 24
)

const instructions = `How to use this reader
 1. Pick a text file below (enter opens, esc goes up)
 2. Your text will appear line by line in the reading pane
 3. Press enter or click anywhere to move to the next line
 4. Your progress is shown at the top of the reading pane`

// Options configure the model.
type Options struct {
	Ingest       ingest.Options
	ContinueKeys []string
	StartDir     string
	Watch        bool
	Logger       zerolog.Logger
}

// Model is the bubbletea model. It owns the reading session.
type Model struct {
	ctx     context.Context
	opts    Options
	log     zerolog.Logger
	session *reader.Session
	keys    keyMap

	picker   filepicker.Model
	viewport viewport.Model
	progress progress.Model
	help     help.Model

	initial  tea.Cmd
	watcher  *watch.Watcher
	fileName string
	errMsg   string
	loading  bool
	quitting bool
	width    int
	height   int
}

type ingestedMsg struct {
	name  string
	path  string
	lines []string
	err   error
	// set for reloads triggered by a file change
	watcher *watch.Watcher
}

type fileChangedMsg struct {
	w *watch.Watcher
}

type watchStoppedMsg struct {
	w   *watch.Watcher
	err error
}

// New returns a model in the Empty state. If initial is non-nil it is
// ingested as soon as the program starts.
func New(ctx context.Context, opts Options, initial ingest.Source) *Model {
	fp := filepicker.New()
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		log:      opts.Logger,
		session:  reader.NewSession(),
		keys:     newKeyMap(opts.ContinueKeys),
		picker:   fp,
		viewport: viewport.New(80, 24-headerHeight-footerHeight),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(progressWidth)),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	if initial != nil {
		m.initial = m.open(initial)
	}
	return m
}

// State returns the current reading session state.
func (m *Model) State() reader.State {
	return m.session.State()
}

// Err returns the message of the last failed ingestion, if any.
func (m *Model) Err() string {
	return m.errMsg
}

// FileName returns the name of the loaded file.
func (m *Model) FileName() string {
	return m.fileName
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.picker.Init(), m.initial)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m.updatePicker(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-emptyChrome, 3)})

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.stopWatching()
			return m, tea.Quit
		}
		if !m.session.State().Active() {
			return m.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Continue):
			m.advance()
		case key.Matches(msg, m.keys.Open):
			return m, m.reset()
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.inReadingSurface(msg.Y) {
			m.advance()
		}
		return m, nil

	case ingestedMsg:
		return m, m.handleIngested(msg)

	case fileChangedMsg:
		if msg.w != m.watcher {
			return m, nil
		}
		m.log.Info().Str("file", msg.w.Path()).Msg("file changed on disk, reloading")
		return m, tea.Batch(m.reload(msg.w), waitForChange(msg.w))

	case watchStoppedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.log.Error().Err(msg.err).Str("file", msg.w.Path()).Msg("watcher stopped")
		}
		return m, nil
	}

	return m.updatePicker(msg)
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok && !m.session.State().Active() {
		return m, tea.Batch(cmd, m.open(ingest.FileSource{Path: path}))
	}
	return m, cmd
}

// open starts ingesting src off the UI loop.
func (m *Model) open(src ingest.Source) tea.Cmd {
	m.loading = true
	ctx, opts := m.ctx, m.opts.Ingest
	var path string
	if fs, ok := src.(ingest.FileSource); ok {
		path = fs.Path
	}
	m.log.Debug().Str("file", src.Name()).Str("media_type", src.MediaType()).Msg("ingesting")

	return func() tea.Msg {
		lines, err := ingest.Ingest(ctx, src, opts)
		return ingestedMsg{name: src.Name(), path: path, lines: lines, err: err}
	}
}

// reload re-ingests the file behind w. The result is tagged with w so it
// can be dropped if w is stopped before it arrives.
func (m *Model) reload(w *watch.Watcher) tea.Cmd {
	cmd := m.open(ingest.FileSource{Path: w.Path()})
	return func() tea.Msg {
		msg := cmd().(ingestedMsg)
		msg.watcher = w
		return msg
	}
}

func (m *Model) handleIngested(msg ingestedMsg) tea.Cmd {
	m.loading = false
	if msg.watcher != nil && msg.watcher != m.watcher {
		m.log.Debug().Str("file", msg.name).Msg("dropping reload from a stopped watcher")
		return nil
	}
	if msg.err != nil {
		m.errMsg = userMessage(msg.err)
		m.log.Warn().Err(msg.err).Str("file", msg.name).Msg("ingest failed")
		return nil
	}

	m.session.Load(msg.lines)
	m.fileName = msg.name
	m.errMsg = ""
	m.syncViewport()
	m.log.Info().Str("file", msg.name).Int("lines", len(msg.lines)).Msg("loaded")

	if msg.path == "" || !m.opts.Watch {
		return nil
	}
	return m.startWatching(msg.path)
}

func userMessage(err error) string {
	var ie *ingest.Error
	if errors.As(err, &ie) {
		return ie.UserMessage()
	}
	return err.Error()
}

func (m *Model) advance() {
	if m.session.Advance() {
		m.syncViewport()
	}
}

// reset discards the session so a different file can be picked.
func (m *Model) reset() tea.Cmd {
	m.log.Info().Str("file", m.fileName).Int("position", m.session.State().Position()).Msg("reset")
	m.session.Reset()
	m.stopWatching()
	m.fileName = ""
	m.errMsg = ""
	return m.picker.Init()
}

func (m *Model) startWatching(path string) tea.Cmd {
	if m.watcher != nil {
		if abs, err := filepath.Abs(path); err == nil && abs == m.watcher.Path() {
			return nil
		}
	}
	m.stopWatching()

	w, err := watch.New(path, m.log)
	if err != nil {
		m.log.Error().Err(err).Str("file", path).Msg("cannot watch file")
		return nil
	}
	m.watcher = w
	ctx := m.ctx
	return tea.Batch(
		func() tea.Msg { return watchStoppedMsg{w: w, err: w.Run(ctx)} },
		waitForChange(w),
	)
}

func (m *Model) stopWatching() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		m.log.Error().Err(err).Msg("closing watcher")
	}
	m.watcher = nil
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return fileChangedMsg{w: w}
	}
}

func (m *Model) inReadingSurface(y int) bool {
	return m.session.State().Active() && y >= headerHeight && y < headerHeight+m.viewport.Height
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-footerHeight, 1)
	m.help.Width = m.width
	m.syncViewport()
}

// syncViewport re-renders the lines and keeps the current one centred.
// Wrapped lines take several rows, so the offset counts rendered rows.
func (m *Model) syncViewport() {
	st := m.session.State()
	if !st.Active() {
		m.viewport.SetContent("")
		return
	}

	view := st.View()
	rows := make([]string, len(view.Lines))
	top := 0
	for i, l := range view.Lines {
		rows[i] = renderLine(l, m.viewport.Width)
		if i < view.Position {
			top += lipgloss.Height(rows[i])
		}
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))
	m.viewport.SetYOffset(max(top-m.viewport.Height/2, 0))
}

// renderLine styles one line, wrapping it to width so long lines are
// shown in full.
func renderLine(l reader.ViewLine, width int) string {
	text := strings.ReplaceAll(l.Text, "\r", "")
	if text == "" {
		text = " "
	}
	var style lipgloss.Style
	switch l.Class {
	case reader.Current:
		style = currentStyle
	case reader.Consumed:
		style = consumedStyle
	default:
		style = upcomingStyle
	}
	return style.Width(width).Render(text)
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.session.State()
	if !st.Active() {
		return m.emptyView()
	}

	view := st.View()
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Reading Text"))
	sb.WriteString(fileStyle.Render(m.fileName))
	sb.WriteString("\n")

	sb.WriteString(statusStyle.Render(fmt.Sprintf("Line %d of %d", view.Position+1, view.Total)))
	sb.WriteString(" ")
	sb.WriteString(m.progress.ViewAs(float64(view.Progress) / 100))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("%d%%", view.Progress)))
	sb.WriteString("\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.errMsg != "":
		sb.WriteString(errorStyle.Render(m.errMsg))
	case view.AtEnd:
		sb.WriteString(controlsStyle.Render("End of file. Press o to open a different file."))
	default:
		sb.WriteString(controlsStyle.Render("Press " + m.keys.Continue.Help().Key + " or click anywhere to continue"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func (m *Model) emptyView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Line Reader"))
	sb.WriteString("\n")
	sb.WriteString(instructionsStyle.Render(instructions))
	sb.WriteString("\n")

	if m.loading {
		sb.WriteString(statusStyle.Render("Reading file..."))
	} else {
		sb.WriteString(statusStyle.Render("Pick a text file:"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.picker.View())
	sb.WriteString("\n")

	if m.errMsg != "" {
		sb.WriteString(errorStyle.Render(m.errMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(controlsStyle.Render("q: quit"))

	return sb.String()
}
