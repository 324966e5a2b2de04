// Package reader provides the line-at-a-time reading session.
package reader

// State is a reading session value: either Empty (the zero value) or
// Active with a non-empty line sequence and a position into it.
type State struct {
	lines    []string
	position int
}

// Load installs lines and moves to the first one. Loading an empty
// sequence leaves s unchanged.
func Load(s State, lines []string) State {
	if len(lines) == 0 {
		return s
	}
	owned := make([]string, len(lines))
	copy(owned, lines)
	return State{lines: owned, position: 0}
}

// Advance moves to the next line. It is a no-op on the last line and in Empty.
func Advance(s State) State {
	if s.position < len(s.lines)-1 {
		s.position++
	}
	return s
}

// Reset discards the loaded lines.
func Reset(State) State {
	return State{}
}

// Active reports whether lines are loaded.
func (s State) Active() bool {
	return len(s.lines) > 0
}

// Len returns the number of loaded lines.
func (s State) Len() int {
	return len(s.lines)
}

// Position returns the zero-based index of the current line.
func (s State) Position() int {
	return s.position
}

// Line returns line i, or "" if i is out of range.
func (s State) Line(i int) string {
	if i >= 0 && i < len(s.lines) {
		return s.lines[i]
	}
	return ""
}

// CurrentLine returns the line at the current position.
func (s State) CurrentLine() string {
	return s.Line(s.position)
}

// AtEnd returns true if the reader is on the last line.
func (s State) AtEnd() bool {
	return s.Active() && s.position == len(s.lines)-1
}

// Session owns a State and is the only place it is mutated.
type Session struct {
	state State
}

// NewSession returns an Empty session.
func NewSession() *Session {
	return &Session{}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	return s.state
}

// Load replaces the current lines and returns to the first line.
func (s *Session) Load(lines []string) {
	s.state = Load(s.state, lines)
}

// Advance moves to the next line. Returns true if the position changed.
func (s *Session) Advance() bool {
	before := s.state.position
	s.state = Advance(s.state)
	return s.state.position != before
}

// Reset returns the session to Empty.
func (s *Session) Reset() {
	s.state = Reset(s.state)
}
