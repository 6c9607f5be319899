package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"logmux/internal/command"
	"logmux/internal/editor"
	"logmux/internal/util/logx"
	"logmux/internal/version"
	"logmux/internal/view"
)

func (m *Model) View() string {
	if m.termWidth == 0 {
		return "starting..."
	}
	v := lipgloss.JoinVertical(lipgloss.Left, m.renderPane(), m.renderCommandLine(), m.renderStatus())
	if m.modal != modalNone {
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) fit(s string) string {
	if m.termWidth <= 0 {
		return s
	}
	return truncate.String(s, uint(m.termWidth))
}

func (m *Model) renderRow(r view.Row) string {
	var b strings.Builder
	if r.Line != "" {
		b.WriteString(m.styles.Meta.Render(r.Line))
		b.WriteByte(' ')
	}
	if r.Time != "" {
		b.WriteString(m.styles.Meta.Render(r.Time))
		b.WriteByte(' ')
	}
	if r.Source != "" {
		b.WriteString(m.styles.Stream[r.Entry.Stream].Render(r.Source))
		b.WriteByte(' ')
	}
	text := m.displayText(r.Entry)
	if !m.raw {
		// raw text keeps the program's own colours
		text = m.styles.Base.Render(text)
	}
	b.WriteString(text)
	return m.fit(b.String())
}

func (m *Model) renderPane() string {
	h := m.paneHeight()
	if h == 0 {
		return ""
	}
	lines := make([]string, 0, h)
	for _, r := range m.rows() {
		lines = append(lines, m.renderRow(r))
	}
	if len(lines) == 0 {
		msg := "waiting for output..."
		if len(m.snap) > 0 {
			msg = fmt.Sprintf("no visible lines (%s)", m.filter)
		}
		lines = append(lines, m.styles.Empty.Render(m.fit(msg)))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCommandLine() string {
	switch m.editor.Mode() {
	case editor.Editing:
		buf := []rune(m.editor.Buffer())
		c := m.editor.Cursor()
		under := " "
		after := ""
		if c < len(buf) {
			under = string(buf[c])
			after = string(buf[c+1:])
		}
		line := m.styles.Prompt.Render(":"+string(buf[:c])) + m.styles.Cursor.Render(under) + m.styles.Prompt.Render(after)
		return m.fit(line)
	case editor.ReverseSearch:
		return m.fit(m.styles.Search.Render(m.editor.Prompt()))
	}
	if m.lastMsg != "" {
		if m.lastErr {
			return m.fit(m.styles.StatusErr.Render(m.lastMsg))
		}
		return m.fit(m.styles.StatusOK.Render(m.lastMsg))
	}
	return m.fit(m.styles.Help.Render(m.help.ShortHelpView(m.keymap.ShortHelp())))
}

func (m *Model) renderStatus() string {
	var parts []string
	if m.events != nil && m.running() > 0 {
		parts = append(parts, m.spin.View())
	}
	if m.vp.Tail() {
		parts = append(parts, "[FOLLOW]")
	} else {
		parts = append(parts, "[PAUSED]")
	}
	start, end := m.vp.Window()
	if end > start {
		parts = append(parts, fmt.Sprintf("rows %d-%d/%d", start+1, end, m.index.Count()))
	} else {
		parts = append(parts, fmt.Sprintf("rows 0/%d", m.index.Count()))
	}
	parts = append(parts, fmt.Sprintf("total %d", len(m.snap)), m.filter.String())
	if m.raw {
		parts = append(parts, "raw")
	}
	parts = append(parts, m.sourceSummary())
	return m.styles.Status.Render(m.fit(strings.Join(parts, " | ")))
}

func (m *Model) sourceSummary() string {
	var running, exited, failed int
	for _, st := range m.sources {
		switch st.state {
		case runPending, runRunning:
			running++
		case runExited:
			exited++
		case runFailed:
			failed++
		}
	}
	s := fmt.Sprintf("%d running", running)
	if exited > 0 {
		s += fmt.Sprintf(", %d exited", exited)
	}
	if failed > 0 {
		s += fmt.Sprintf(", %d failed", failed)
	}
	return s
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("Normal mode\n")
	b.WriteString(m.help.FullHelpView(m.keymap.FullHelp()))
	b.WriteString("\n\nCommand line\n")
	b.WriteString(m.help.FullHelpView(m.editKeys.FullHelp()))
	b.WriteString("\n\nCommands\n")
	for _, u := range command.Usage {
		b.WriteString("  :" + u + "\n")
	}
	b.WriteString("\nlogmux " + version.String())
	return m.styles.Help.Render(b.String())
}

func (m *Model) renderSources() string {
	lines := make([]string, 0, len(m.order))
	for _, id := range m.order {
		st := m.sources[id]
		state := "running"
		switch st.state {
		case runExited:
			state = fmt.Sprintf("exited %d", st.exitCode)
		case runFailed:
			state = fmt.Sprintf("failed: %v", st.err)
		}
		lines = append(lines, fmt.Sprintf("%-12s %-8s lines:%-8d %s", st.src.Name, st.src.Kind, st.lines, state))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) openModal(kind modalKind) {
	m.modal = kind
	m.resizeModal()
}

func (m *Model) refreshLogsModal() {
	atBottom := m.modalVP.AtBottom()
	m.modalVP.SetContent(logx.Dump())
	if atBottom {
		m.modalVP.GotoBottom()
	}
}

func (m *Model) resizeModal() {
	w := max(m.termWidth-6, 20)
	h := max(m.termHeight-6, 5)
	extra := 4
	if m.modal == modalLogs {
		extra += len(m.order) + 1
	}
	m.modalVP = viewport.New(w-4, max(h-extra, 1))
	switch m.modal {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
	case modalLogs:
		m.modalVP.SetContent(logx.Dump())
		m.modalVP.GotoBottom()
	}
}

func (m *Model) renderModal() string {
	var title, content string
	switch m.modal {
	case modalHelp:
		title = "Help"
		content = m.modalVP.View() + "\n[esc]=close"
	case modalLogs:
		title = "Application Logs"
		content = m.styles.Help.Render(m.renderSources()) + "\n" + m.modalVP.View() + "\n[esc]=close"
	}
	boxW := max(m.termWidth-6, 20)
	body := m.styles.PopupBox.Width(boxW).Render(m.styles.PopupTitle.Render(title) + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
