package reader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyState(t *testing.T) {
	var s State
	assert.False(t, s.Active())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.AtEnd())

	_, ok := s.Progress()
	assert.False(t, ok)

	s = Advance(s)
	assert.False(t, s.Active(), "advance in Empty is a no-op")
	assert.Equal(t, View{}, s.View())
}

func TestLoad(t *testing.T) {
	s := Load(State{}, []string{"a", "b", "c"})
	require.True(t, s.Active())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 0, s.Position())
	assert.Equal(t, "a", s.CurrentLine())

	t.Run("resets position when active", func(t *testing.T) {
		s := Advance(Advance(s))
		require.Equal(t, 2, s.Position())

		s = Load(s, []string{"x", "y"})
		assert.Equal(t, 0, s.Position())
		assert.Equal(t, "x", s.CurrentLine())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("empty sequence leaves state unchanged", func(t *testing.T) {
		moved := Advance(s)
		assert.Equal(t, moved, Load(moved, nil))
		assert.Equal(t, State{}, Load(State{}, []string{}))
	})

	t.Run("copies input", func(t *testing.T) {
		in := []string{"first", "second"}
		s := Load(State{}, in)
		in[0] = "changed"
		assert.Equal(t, "first", s.CurrentLine())
	})
}

func TestAdvanceReachesEnd(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 57} {
		t.Run(fmt.Sprintf("%d lines", n), func(t *testing.T) {
			lines := make([]string, n)
			for i := range lines {
				lines[i] = fmt.Sprintf("line %d", i)
			}
			s := Load(State{}, lines)
			for i := 0; i < n-1; i++ {
				assert.False(t, s.AtEnd())
				s = Advance(s)
			}
			assert.Equal(t, n-1, s.Position())
			assert.True(t, s.AtEnd())

			for i := 0; i < 5; i++ {
				s = Advance(s)
				assert.Equal(t, n-1, s.Position())
			}
		})
	}
}

func TestReset(t *testing.T) {
	seq := []string{"one", "two", "three"}
	s := Advance(Load(State{}, []string{"old", "lines"}))
	s = Reset(s)
	assert.False(t, s.Active())
	assert.Equal(t, State{}, s)

	assert.Equal(t, Load(State{}, seq), Load(s, seq))
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		advances int
		expected int
	}{
		{"single line", 1, 0, 100},
		{"single line after advance", 1, 3, 100},
		{"start of two", 2, 0, 0},
		{"end of two", 2, 1, 100},
		{"start of many", 5, 0, 0},
		{"quarter", 5, 1, 25},
		{"half", 5, 2, 50},
		{"end of many", 5, 4, 100},
		{"round down", 4, 1, 33},
		{"round up", 4, 2, 67},
		{"half rounds up", 9, 1, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Load(State{}, make([]string, tt.n))
			for i := 0; i < tt.advances; i++ {
				s = Advance(s)
			}
			pct, ok := s.Progress()
			require.True(t, ok)
			assert.Equal(t, tt.expected, pct)
		})
	}
}

func TestClassify(t *testing.T) {
	s := Advance(Advance(Load(State{}, []string{"a", "b", "c", "d", "e"})))
	expected := []Class{Consumed, Consumed, Current, Upcoming, Upcoming}
	for i, want := range expected {
		assert.Equal(t, want, s.Classify(i), "line %d", i)
	}

	v := s.View()
	require.Len(t, v.Lines, 5)
	for i, l := range v.Lines {
		assert.Equal(t, expected[i], l.Class)
		assert.Equal(t, s.Line(i), l.Text)
	}
	assert.Equal(t, "consumed", Consumed.String())
	assert.Equal(t, "current", Current.String())
	assert.Equal(t, "upcoming", Upcoming.String())
}

func TestLineOutOfRange(t *testing.T) {
	s := Load(State{}, []string{"only"})
	assert.Equal(t, "", s.Line(-1))
	assert.Equal(t, "", s.Line(1))
}

func TestScenarioAlphaGamma(t *testing.T) {
	sess := NewSession()
	sess.Load([]string{"alpha", "beta", "", "gamma"})
	assert.Equal(t, 0, sess.State().Position())

	for i := 0; i < 3; i++ {
		assert.True(t, sess.Advance())
	}

	v := sess.State().View()
	assert.Equal(t, 3, v.Position)
	assert.Equal(t, "gamma", v.Current)
	assert.Equal(t, 100, v.Progress)
	assert.True(t, v.AtEnd)
	assert.Equal(t, 4, v.Total)

	assert.False(t, sess.Advance())
	assert.Equal(t, 3, sess.State().Position())
}

func TestScenarioSingleLine(t *testing.T) {
	sess := NewSession()
	sess.Load([]string{"only line"})

	pct, ok := sess.State().Progress()
	require.True(t, ok)
	assert.Equal(t, 100, pct)

	assert.False(t, sess.Advance())
	assert.Equal(t, 0, sess.State().Position())
}

func TestSessionReset(t *testing.T) {
	sess := NewSession()
	sess.Load([]string{"a", "b"})
	sess.Advance()
	sess.Reset()
	assert.False(t, sess.State().Active())
	assert.False(t, sess.Advance())

	sess.Load([]string{"c", "d"})
	assert.Equal(t, 0, sess.State().Position())
	assert.Equal(t, "c", sess.State().CurrentLine())
}
