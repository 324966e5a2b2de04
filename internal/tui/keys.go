package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Continue key.Binding
	Open     key.Binding
	Quit     key.Binding
}

func newKeyMap(continueKeys []string) keyMap {
	if len(continueKeys) == 0 {
		continueKeys = []string{"enter"}
	}
	names := make([]string, len(continueKeys))
	for i, k := range continueKeys {
		names[i] = keyName(k)
	}
	return keyMap{
		Continue: key.NewBinding(
			key.WithKeys(continueKeys...),
			key.WithHelp(strings.Join(names, "/"), "next line"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open a different file"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Continue, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
