//go:build gui

// Package gui is the fyne desktop front end.
package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/metcalfc/lnr/internal/ingest"
	"github.com/metcalfc/lnr/internal/reader"
	"github.com/metcalfc/lnr/internal/watch"
	"github.com/rs/zerolog"
)

const instructions = `### How to use this reader

1. Open a text file with the button below, or drop one onto the window
2. Your text will appear line by line in the reading pane
3. Press **Enter** or click anywhere to move to the next line
4. Your progress is shown at the top of the reading pane`

// Options configure the window.
type Options struct {
	Ingest       ingest.Options
	ContinueKeys []string
	Watch        bool
	Logger       zerolog.Logger
}

// Window shows one reading session.
type Window struct {
	ctx     context.Context
	opts    Options
	log     zerolog.Logger
	session *reader.Session
	keys    map[fyne.KeyName]bool
	win     fyne.Window

	fileLabel     *widget.Label
	errorLabel    *widget.Label
	statusLabel   *widget.Label
	percentLabel  *widget.Label
	progressBar   *widget.ProgressBar
	list          *widget.List
	surface       *tapArea
	emptyView     fyne.CanvasObject
	readingView   fyne.CanvasObject
	endLabel      *widget.Label
	release       func()
	watcher       *watch.Watcher
	watchedSource string
}

// uriSource adapts a fyne URI from the open dialog or a drop.
type uriSource struct {
	uri fyne.URI
}

func (s uriSource) Name() string                 { return s.uri.Name() }
func (s uriSource) MediaType() string            { return s.uri.MimeType() }
func (s uriSource) Open() (io.ReadCloser, error) { return storage.Reader(s.uri) }

// New builds the window on app. It starts Empty.
func New(ctx context.Context, app fyne.App, opts Options) *Window {
	w := &Window{
		ctx:     ctx,
		opts:    opts,
		log:     opts.Logger,
		session: reader.NewSession(),
		keys:    keyNames(opts.ContinueKeys),
		win:     app.NewWindow("Line Reader"),
	}
	w.build()

	w.win.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) == 0 || w.session.State().Active() {
			return
		}
		w.Ingest(uriSource{uri: uris[0]})
	})
	w.win.SetOnClosed(func() {
		w.unbind()
		w.stopWatching()
	})
	w.win.Resize(fyne.NewSize(800, 600))
	w.showEmpty()
	return w
}

// Window returns the underlying fyne window.
func (w *Window) Window() fyne.Window {
	return w.win
}

// State returns the current reading session state.
func (w *Window) State() reader.State {
	return w.session.State()
}

func (w *Window) build() {
	w.fileLabel = widget.NewLabel("")
	w.errorLabel = widget.NewLabel("")
	w.errorLabel.Importance = widget.DangerImportance
	w.errorLabel.Hide()

	upload := widget.NewButton("Open a text file", w.showOpenDialog)
	upload.Importance = widget.HighImportance

	w.emptyView = container.NewVBox(
		widget.NewRichTextFromMarkdown(instructions),
		upload,
		w.fileLabel,
		w.errorLabel,
	)

	w.statusLabel = widget.NewLabel("")
	w.percentLabel = widget.NewLabel("")
	w.progressBar = widget.NewProgressBar()
	w.progressBar.TextFormatter = func() string { return "" }

	w.list = widget.NewList(
		func() int { return w.session.State().Len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			st := w.session.State()
			label := obj.(*widget.Label)
			styleLine(label, st.Line(id), st.Classify(id))
		},
	)

	different := widget.NewButton("Upload a different file", w.Reset)
	header := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle("Reading Text", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		different,
	)
	progressRow := container.NewBorder(nil, nil, w.statusLabel, w.percentLabel, w.progressBar)

	w.endLabel = widget.NewLabel("Press Enter or click anywhere to continue")
	w.endLabel.Alignment = fyne.TextAlignCenter

	w.surface = newTapArea(w.list)
	w.readingView = container.NewBorder(
		container.NewVBox(header, progressRow),
		w.endLabel,
		nil, nil,
		w.surface,
	)
}

func styleLine(label *widget.Label, text string, class reader.Class) {
	text = strings.ReplaceAll(text, "\r", "")
	if text == "" {
		text = " "
	}
	switch class {
	case reader.Current:
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.Importance = widget.HighImportance
	case reader.Consumed:
		label.TextStyle = fyne.TextStyle{}
		label.Importance = widget.LowImportance
	default:
		label.TextStyle = fyne.TextStyle{}
		label.Importance = widget.MediumImportance
	}
	label.SetText(text)
}

func (w *Window) showOpenDialog() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			w.showError(err.Error())
			return
		}
		if rc == nil {
			return // cancelled
		}
		src := uriSource{uri: rc.URI()}
		rc.Close()
		w.Ingest(src)
	}, w.win)
}

// Ingest reads src in the background and loads it on success.
func (w *Window) Ingest(src ingest.Source) {
	w.ingest(src, nil)
}

// ingest runs in the background. Reloads carry the watcher that asked for
// them.
func (w *Window) ingest(src ingest.Source, from *watch.Watcher) {
	w.log.Debug().Str("file", src.Name()).Str("media_type", src.MediaType()).Msg("ingesting")
	go func() {
		lines, err := ingest.Ingest(w.ctx, src, w.opts.Ingest)
		fyne.Do(func() { w.applyReload(from, src, lines, err) })
	}()
}

// applyReload drops results from a watcher that has since been stopped.
func (w *Window) applyReload(from *watch.Watcher, src ingest.Source, lines []string, err error) {
	if from != nil && from != w.watcher {
		w.log.Debug().Str("file", src.Name()).Msg("dropping reload from a stopped watcher")
		return
	}
	w.apply(src, lines, err)
}

// apply runs on the UI goroutine. A failure never touches the session.
func (w *Window) apply(src ingest.Source, lines []string, err error) {
	if err != nil {
		w.log.Warn().Err(err).Str("file", src.Name()).Msg("ingest failed")
		var ie *ingest.Error
		if errors.As(err, &ie) {
			w.showError(ie.UserMessage())
		} else {
			w.showError(err.Error())
		}
		return
	}

	w.session.Load(lines)
	w.log.Info().Str("file", src.Name()).Int("lines", len(lines)).Msg("loaded")
	w.errorLabel.Hide()
	w.fileLabel.SetText("Uploaded file: " + src.Name())
	w.showReading()

	if w.opts.Watch {
		w.watch(src)
	}
}

func (w *Window) showError(msg string) {
	w.errorLabel.SetText(msg)
	w.errorLabel.Show()
	if w.session.State().Active() {
		dialog.ShowInformation("Could not open file", msg, w.win)
	}
}

func (w *Window) showEmpty() {
	w.win.SetContent(w.emptyView)
}

func (w *Window) showReading() {
	w.unbind()
	w.release = w.bind()
	w.win.SetContent(w.readingView)
	w.refresh()
}

// bind installs the advance triggers and returns their release func.
func (w *Window) bind() func() {
	c := w.win.Canvas()
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if w.keys[ev.Name] {
			w.Advance()
		}
	})
	w.list.OnSelected = func(widget.ListItemID) {
		w.list.UnselectAll()
		w.Advance()
	}
	w.surface.OnTapped = w.Advance
	return func() {
		c.SetOnTypedKey(nil)
		w.list.OnSelected = nil
		w.surface.OnTapped = nil
	}
}

func (w *Window) unbind() {
	if w.release != nil {
		w.release()
		w.release = nil
	}
}

// Advance moves to the next line.
func (w *Window) Advance() {
	if w.session.Advance() {
		w.refresh()
	}
}

// Reset drops the session and shows the upload view again.
func (w *Window) Reset() {
	w.log.Info().Int("position", w.session.State().Position()).Msg("reset")
	w.unbind()
	w.stopWatching()
	w.session.Reset()
	w.fileLabel.SetText("")
	w.errorLabel.Hide()
	w.showEmpty()
}

func (w *Window) refresh() {
	view := w.session.State().View()
	if !view.Active {
		return
	}
	w.statusLabel.SetText(fmt.Sprintf("Line %d of %d", view.Position+1, view.Total))
	w.percentLabel.SetText(fmt.Sprintf("%d%%", view.Progress))
	w.progressBar.SetValue(float64(view.Progress) / 100)
	if view.AtEnd {
		w.endLabel.SetText("End of file")
	} else {
		w.endLabel.SetText("Press Enter or click anywhere to continue")
	}
	w.list.Refresh()
	w.list.ScrollTo(view.Position)
}

// watch reloads the file whenever it changes on disk. Only local files
// can be watched.
func (w *Window) watch(src ingest.Source) {
	path := localPath(src)
	if path == "" || path == w.watchedSource {
		return
	}
	w.stopWatching()

	wt, err := watch.New(path, w.log)
	if err != nil {
		w.log.Error().Err(err).Str("file", path).Msg("cannot watch file")
		return
	}
	w.watcher = wt
	w.watchedSource = path

	go func() {
		if err := wt.Run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Str("file", path).Msg("watcher stopped")
		}
	}()
	go func() {
		for range wt.Changes() {
			w.log.Info().Str("file", path).Msg("file changed on disk, reloading")
			w.ingest(ingest.FileSource{Path: path}, wt)
		}
	}()
}

func (w *Window) stopWatching() {
	if w.watcher == nil {
		return
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Error().Err(err).Msg("closing watcher")
	}
	w.watcher = nil
	w.watchedSource = ""
}

func localPath(src ingest.Source) string {
	switch s := src.(type) {
	case ingest.FileSource:
		return s.Path
	case uriSource:
		if s.uri.Scheme() == "file" {
			return s.uri.Path()
		}
	}
	return ""
}

// keyNames maps configured continue keys to fyne key names.
func keyNames(keys []string) map[fyne.KeyName]bool {
	if len(keys) == 0 {
		keys = []string{"enter"}
	}
	out := make(map[fyne.KeyName]bool)
	for _, k := range keys {
		switch strings.ToLower(k) {
		case "enter", "return":
			out[fyne.KeyReturn] = true
			out[fyne.KeyEnter] = true
		case " ", "space":
			out[fyne.KeySpace] = true
		case "right":
			out[fyne.KeyRight] = true
		case "down":
			out[fyne.KeyDown] = true
		default:
			if len(k) == 1 {
				out[fyne.KeyName(strings.ToUpper(k))] = true
			} else {
				out[fyne.KeyName(k)] = true
			}
		}
	}
	return out
}

// tapArea reports taps anywhere over its content, including the blank
// space below the last list row.
type tapArea struct {
	widget.BaseWidget
	content  fyne.CanvasObject
	OnTapped func()
}

func newTapArea(content fyne.CanvasObject) *tapArea {
	t := &tapArea{content: content}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tapArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

func (t *tapArea) Tapped(*fyne.PointEvent) {
	if t.OnTapped != nil {
		t.OnTapped()
	}
}
