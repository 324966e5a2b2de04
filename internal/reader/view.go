package reader

import "math"

// Class is the presentation class of a line relative to the position.
type Class int

const (
	Upcoming Class = iota
	Current
	Consumed
)

func (c Class) String() string {
	switch c {
	case Current:
		return "current"
	case Consumed:
		return "consumed"
	}
	return "upcoming"
}

// Progress returns the reading progress in percent. ok is false in Empty.
// A single-line sequence is always at 100.
func (s State) Progress() (pct int, ok bool) {
	n := len(s.lines)
	switch {
	case n == 0:
		return 0, false
	case n == 1:
		return 100, true
	}
	return int(math.Round(float64(s.position) / float64(n-1) * 100)), true
}

// Classify returns the class of line i.
func (s State) Classify(i int) Class {
	switch {
	case i == s.position:
		return Current
	case i < s.position:
		return Consumed
	}
	return Upcoming
}

// ViewLine is one line as handed to a front end.
type ViewLine struct {
	Text  string
	Class Class
}

// View is the read-only data a front end renders.
type View struct {
	Active   bool
	Total    int
	Position int
	Current  string
	Progress int
	AtEnd    bool
	Lines    []ViewLine
}

// View derives the presentation data from s.
func (s State) View() View {
	if !s.Active() {
		return View{}
	}
	pct, _ := s.Progress()
	lines := make([]ViewLine, len(s.lines))
	for i, text := range s.lines {
		lines[i] = ViewLine{Text: text, Class: s.Classify(i)}
	}
	return View{
		Active:   true,
		Total:    len(s.lines),
		Position: s.position,
		Current:  s.CurrentLine(),
		Progress: pct,
		AtEnd:    s.AtEnd(),
		Lines:    lines,
	}
}
