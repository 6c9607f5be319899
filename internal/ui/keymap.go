package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"logmux/internal/editor"
)

// KeyMap holds the Normal-mode bindings.
type KeyMap struct {
	Quit     key.Binding
	Command  key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Pause    key.Binding
	Raw      key.Binding
	Help     key.Binding
	AppLogs  key.Binding
	Export   key.Binding
	Copy     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Command:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home", "<"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end", ">"), key.WithHelp("G", "bottom/follow")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Raw:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raw")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		AppLogs:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "app logs")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy view")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Command, k.Pause, k.Raw, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Command, k.Pause, k.Raw, k.Export, k.Copy},
		{k.AppLogs, k.Help, k.Quit},
	}
}

// EditKeyMap binds command-line keys to editor operations.
type EditKeyMap struct {
	Home        key.Binding
	End         key.Binding
	KillToEnd   key.Binding
	KillToStart key.Binding
	DeleteWord  key.Binding
	Search      key.Binding
	Left        key.Binding
	Right       key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding
	Backspace   key.Binding
	Delete      key.Binding
	Cancel      key.Binding
	Submit      key.Binding
}

func DefaultEditKeyMap() EditKeyMap {
	return EditKeyMap{
		Home:        key.NewBinding(key.WithKeys("ctrl+a", "home"), key.WithHelp("^a", "start of line")),
		End:         key.NewBinding(key.WithKeys("ctrl+e", "end"), key.WithHelp("^e", "end of line")),
		KillToEnd:   key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("^k", "kill to end")),
		KillToStart: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("^u", "kill to start")),
		DeleteWord:  key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace"), key.WithHelp("^w", "delete word")),
		Search:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "reverse search")),
		Left:        key.NewBinding(key.WithKeys("left", "ctrl+b"), key.WithHelp("←", "left")),
		Right:       key.NewBinding(key.WithKeys("right", "ctrl+f"), key.WithHelp("→", "right")),
		HistoryPrev: key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "older")),
		HistoryNext: key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "newer")),
		Backspace:   key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("bksp", "delete left")),
		Delete:      key.NewBinding(key.WithKeys("delete", "ctrl+d"), key.WithHelp("del", "delete")),
		Cancel:      key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	}
}

func (k EditKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Search, k.HistoryPrev}
}

func (k EditKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.End, k.Left, k.Right},
		{k.KillToEnd, k.KillToStart, k.DeleteWord, k.Backspace, k.Delete},
		{k.HistoryPrev, k.HistoryNext, k.Search, k.Cancel, k.Submit},
	}
}

// ops translates a key press into editor operations. A pasted run of
// characters arrives as one key message and becomes one insert per rune.
func (k EditKeyMap) ops(msg tea.KeyMsg) []editor.Op {
	if op, ok := k.op(msg); ok {
		return []editor.Op{op}
	}
	if msg.Type == tea.KeyRunes && !msg.Alt {
		out := make([]editor.Op, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, editor.Insert(r))
		}
		return out
	}
	return nil
}

func (k EditKeyMap) op(msg tea.KeyMsg) (editor.Op, bool) {
	switch {
	case key.Matches(msg, k.Submit):
		return editor.Submit, true
	case key.Matches(msg, k.Cancel):
		return editor.Cancel, true
	case key.Matches(msg, k.Home):
		return editor.Home, true
	case key.Matches(msg, k.End):
		return editor.End, true
	case key.Matches(msg, k.KillToEnd):
		return editor.KillToEnd, true
	case key.Matches(msg, k.KillToStart):
		return editor.KillToStart, true
	case key.Matches(msg, k.DeleteWord):
		return editor.DeleteWordBackward, true
	case key.Matches(msg, k.Search):
		return editor.SearchBackward, true
	case key.Matches(msg, k.Left):
		return editor.Left, true
	case key.Matches(msg, k.Right):
		return editor.Right, true
	case key.Matches(msg, k.HistoryPrev):
		return editor.HistoryPrev, true
	case key.Matches(msg, k.HistoryNext):
		return editor.HistoryNext, true
	case key.Matches(msg, k.Backspace):
		return editor.Backspace, true
	case key.Matches(msg, k.Delete):
		return editor.DeleteChar, true
	}
	if msg.Type == tea.KeySpace {
		return editor.Insert(' '), true
	}
	return editor.Op{}, false
}
