package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the controller's bindings. Verb keys are additionally gated
// by the selected task's guard predicates at dispatch time.
type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Search    key.Binding
	Close     key.Binding
	Next      key.Binding
	Prev      key.Binding
	Select    key.Binding
	Workspace key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Grab      key.Binding
	Menu      key.Binding
	Hooks     key.Binding
	InfoTab   key.Binding
	InfoBack  key.Binding
	Refresh   key.Binding
	Commit    key.Binding
	Sync      key.Binding
	Merge     key.Binding
	Rebase    key.Binding
	Archive   key.Binding
	Reset     key.Binding
	Clean     key.Binding
	Quick     []key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Next: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/down", "next task"),
	),
	Prev: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/up", "prev task"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Workspace: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "workspace"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "move down"),
	),
	Grab: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "grab"),
	),
	Menu: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "menu"),
	),
	Hooks: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "notifications"),
	),
	InfoTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next panel"),
	),
	InfoBack: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev panel"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r", "R"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	Commit: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "commit"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	Merge: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "merge"),
	),
	Rebase: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retarget"),
	),
	Archive: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "archive"),
	),
	Reset: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "reset"),
	),
	Clean: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "clean"),
	),
	Quick: []key.Binding{
		key.NewBinding(key.WithKeys("alt+1")),
		key.NewBinding(key.WithKeys("alt+2")),
		key.NewBinding(key.WithKeys("alt+3")),
		key.NewBinding(key.WithKeys("alt+4")),
		key.NewBinding(key.WithKeys("alt+5")),
		key.NewBinding(key.WithKeys("alt+6")),
		key.NewBinding(key.WithKeys("alt+7")),
		key.NewBinding(key.WithKeys("alt+8")),
		key.NewBinding(key.WithKeys("alt+9")),
		key.NewBinding(key.WithKeys("alt+0")),
	},
}
