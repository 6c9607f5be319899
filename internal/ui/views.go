package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"

	"logmux/internal/export"
	"logmux/internal/model"
	"logmux/internal/parse"
	"logmux/internal/util"
	"logmux/internal/util/logx"
	"logmux/internal/view"
)

func overlay(base, top string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(top, "\n")
	n := max(len(bLines), len(oLines))
	for len(bLines) < n {
		bLines = append(bLines, "")
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		// whitespace-only overlay lines are transparent
		if i < len(oLines) && strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// osc52CopyCmd writes text to the terminal clipboard, wrapping the
// sequence for tmux and screen.
func osc52CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		seq := osc52.New(text).Limit(100 * 1024)
		term := strings.ToLower(os.Getenv("TERM"))
		if os.Getenv("TMUX") != "" || strings.HasPrefix(term, "tmux") {
			seq = seq.Tmux()
		} else if strings.HasPrefix(term, "screen") {
			seq = seq.Screen()
		}
		if _, err := seq.WriteTo(os.Stdout); err != nil {
			logx.Warnf("copy: %v", err)
		}
		return nil
	}
}

// rows is the current frame.
func (m *Model) rows() []view.Row {
	return view.Rows(m.snap, m.index, m.vp, m.filter)
}

// displayText is the entry text as drawn in the pane.
func (m *Model) displayText(e model.LogEntry) string {
	if m.raw {
		return parse.Raw(e.Text)
	}
	return parse.Plain(e.Text)
}

// copyText is the visible frame as plain text, one row per line.
func (m *Model) copyText() string {
	rows := m.rows()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line := parse.Plain(r.Entry.Text)
		if p := r.Prefix(); p != "" {
			line = p + " " + line
		}
		if m.cfg.Redact {
			line = util.RedactPII(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// filtered returns every entry passing the current filter, in order.
func (m *Model) filtered() []model.LogEntry {
	out := make([]model.LogEntry, m.index.Count())
	for i := range out {
		out[i] = m.snap[m.index.At(i)]
	}
	return out
}

func (m *Model) exportPath() string {
	if m.cfg.ExportOut != "" {
		return m.cfg.ExportOut
	}
	return fmt.Sprintf("logmux-%s.ndjson", time.Now().Format("20060102-150405"))
}

func (m *Model) exportCmd() tea.Cmd {
	entries := m.filtered()
	path := m.exportPath()
	opt := export.Options{Redact: m.cfg.Redact}
	return func() tea.Msg {
		err := export.ToFile(path, entries, opt)
		return exportDoneMsg{path: path, n: len(entries), err: err}
	}
}
