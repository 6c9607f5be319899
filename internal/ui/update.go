package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"logmux/internal/command"
	"logmux/internal/editor"
	"logmux/internal/filter"
	"logmux/internal/util/logx"
)

// infoTTL is how long a non-error status message stays on the command line.
const infoTTL = 5 * time.Second

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.vp.Resize(m.paneHeight())
		if m.modal != modalNone {
			m.resizeModal()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.modal != modalNone {
			var cmd tea.Cmd
			m.modalVP, cmd = m.modalVP.Update(msg)
			return m, cmd
		}
		switch msg.Type {
		case tea.MouseWheelUp:
			m.vp.ScrollBy(-m.cfg.WheelLines)
		case tea.MouseWheelDown:
			m.vp.ScrollBy(m.cfg.WheelLines)
		}
		return m, nil
	case tickMsg:
		m.drain()
		if m.lastMsg != "" && !m.lastErr && time.Since(m.lastMsgAt) > infoTTL {
			m.clearMessage()
		}
		if m.modal == modalLogs {
			m.refreshLogsModal()
		}
		return m, m.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case exportDoneMsg:
		if msg.err != nil {
			logx.Errorf("export: %v", msg.err)
			m.setError(msg.err.Error())
		} else {
			logx.Infof("export: wrote %d entries to %s", msg.n, msg.path)
			m.setInfo(fmt.Sprintf("exported %d entries to %s", msg.n, msg.path))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}
	if m.editor.Mode() != editor.Normal {
		return m, m.handleEditKey(msg)
	}

	km := m.keymap
	switch {
	case key.Matches(msg, km.Quit):
		return m, m.quit()
	case key.Matches(msg, km.Command):
		m.editor, _ = m.editor.Apply(editor.Begin)
		m.clearMessage()
	case key.Matches(msg, km.Up):
		m.vp.ScrollBy(-1)
	case key.Matches(msg, km.Down):
		m.vp.ScrollBy(1)
	case key.Matches(msg, km.PageUp):
		m.vp.PageUp()
	case key.Matches(msg, km.PageDown):
		m.vp.PageDown()
	case key.Matches(msg, km.Top):
		m.vp.ScrollToTop()
	case key.Matches(msg, km.Bottom):
		m.vp.ScrollToBottom()
	case key.Matches(msg, km.Pause):
		m.vp.SetFollow(!m.vp.Tail())
		if m.vp.Tail() {
			m.setInfo("following")
		} else {
			m.setInfo("paused")
		}
	case key.Matches(msg, km.Raw):
		m.raw = !m.raw
		if m.raw {
			m.setInfo("raw output")
		} else {
			m.setInfo("plain output")
		}
	case key.Matches(msg, km.Help):
		m.openModal(modalHelp)
	case key.Matches(msg, km.AppLogs):
		m.openModal(modalLogs)
	case key.Matches(msg, km.Export):
		if m.index.Count() == 0 {
			m.setError("nothing to export")
			return m, nil
		}
		m.setInfo("exporting...")
		return m, m.exportCmd()
	case key.Matches(msg, km.Copy):
		text := m.copyText()
		if text == "" {
			m.setError("nothing to copy")
			return m, nil
		}
		m.setInfo(fmt.Sprintf("copied %d rows", len(m.rows())))
		return m, osc52CopyCmd(text)
	}
	return m, nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "?", "L":
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	ops := m.editKeys.ops(msg)
	if len(ops) == 0 {
		return nil
	}
	m.clearMessage()
	var cmds []tea.Cmd
	for _, op := range ops {
		var res editor.Result
		m.editor, res = m.editor.Apply(op)
		if res.Submitted {
			if cmd := m.execute(res.Line); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// execute runs one submitted command line.
func (m *Model) execute(line string) tea.Cmd {
	d, err := command.Parse(line)
	if err != nil {
		logx.Debugf("command %q rejected: %v", line, err)
		m.setError(err.Error())
		return nil
	}
	switch d.Verb {
	case command.Quit:
		return m.quit()
	case command.Goto:
		m.gotoLine(d.Line)
		return nil
	}
	m.applyFilter(d.Apply(m.filter))
	logx.Infof("command: %s -> %s", d, m.filter)
	m.setInfo(d.String() + " ok")
	return nil
}

// gotoLine puts the first visible entry numbered n or later at the top and
// stops following.
func (m *Model) gotoLine(n int) {
	i := m.index.LowerBound(m.snap, uint64(n))
	if i >= m.index.Count() {
		m.setError(fmt.Sprintf("line %d is not in the current view", n))
		return
	}
	m.vp.JumpTo(i)
	m.vp.SetFollow(false)
	m.setInfo(fmt.Sprintf("line %d", n))
}

// applyFilter installs st and keeps the entry that was at the top of the
// pane in place when it is still visible.
func (m *Model) applyFilter(st filter.State) {
	if st == m.filter {
		return
	}
	var anchor uint64
	start, end := m.vp.Window()
	if end > start {
		anchor = m.snap[m.index.At(start)].Seq
	}
	m.filter = st
	m.index.Reset(st, m.snap)
	top := 0
	if anchor > 0 {
		top = m.index.LowerBound(m.snap, anchor)
	}
	m.vp.AnchorAt(m.index.Count(), top)
}

func (m *Model) quit() tea.Cmd {
	m.stop()
	return tea.Quit
}

func (m *Model) paneHeight() int {
	// command line + status bar
	return max(m.termHeight-2, 0)
}

func (m *Model) setInfo(s string) {
	m.lastMsg, m.lastErr, m.lastMsgAt = s, false, time.Now()
}

func (m *Model) setError(s string) {
	m.lastMsg, m.lastErr, m.lastMsgAt = s, true, time.Now()
}

func (m *Model) clearMessage() {
	m.lastMsg, m.lastErr = "", false
}
