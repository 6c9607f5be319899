package ui

import (
	"github.com/charmbracelet/lipgloss"

	"logmux/internal/model"
)

type Styles struct {
	Base       lipgloss.Style
	Status     lipgloss.Style
	StatusErr  lipgloss.Style
	StatusOK   lipgloss.Style
	Meta       lipgloss.Style
	Stream     map[model.StreamKind]lipgloss.Style
	Prompt     lipgloss.Style
	Search     lipgloss.Style
	Cursor     lipgloss.Style
	Help       lipgloss.Style
	Empty      lipgloss.Style
	PopupBox   lipgloss.Style
	PopupTitle lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Meta = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
		s.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
		s.Search = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Meta = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("0"))
		s.Search = lipgloss.NewStyle().Foreground(lipgloss.Color("27"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	}
	s.StatusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	s.StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	s.Cursor = lipgloss.NewStyle().Reverse(true)
	s.Empty = s.Help.Italic(true)
	s.Stream = map[model.StreamKind]lipgloss.Style{
		model.Stdout: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		model.Stderr: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	return s
}
