package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"

	"logmux/internal/config"
	"logmux/internal/editor"
	"logmux/internal/filter"
	"logmux/internal/ingest"
	"logmux/internal/model"
	"logmux/internal/view"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalLogs
)

type runState int

const (
	runPending runState = iota
	runRunning
	runExited
	runFailed
)

// sourceStatus tracks one input's lifecycle for the status bar.
type sourceStatus struct {
	src      ingest.Source
	state    runState
	exitCode int
	lines    int
	err      error
}

type Model struct {
	ctx context.Context
	cfg *config.Config

	// Pipeline
	events  <-chan ingest.Event
	stop    func()
	sources map[model.SourceID]*sourceStatus
	order   []model.SourceID

	// Data
	store  *model.Store
	snap   []model.LogEntry
	index  *filter.Index
	filter filter.State

	// UI
	vp         *view.Viewport
	editor     editor.State
	keymap     KeyMap
	editKeys   EditKeyMap
	help       help.Model
	spin       spinner.Model
	styles     Styles
	modal      modalKind
	modalVP    viewport.Model
	raw        bool
	termWidth  int
	termHeight int

	// status
	lastMsg   string
	lastErr   bool
	lastMsgAt time.Time
}

type tickMsg struct{}

type exportDoneMsg struct {
	path string
	n    int
	err  error
}
