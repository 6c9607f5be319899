package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"logmux/internal/config"
	"logmux/internal/editor"
	"logmux/internal/filter"
	"logmux/internal/ingest"
	"logmux/internal/model"
	"logmux/internal/util/logx"
	"logmux/internal/view"
)

func initialModel(ctx context.Context, cfg *config.Config, events <-chan ingest.Event, sources []ingest.Source, stop func()) *Model {
	if stop == nil {
		stop = func() {}
	}
	m := &Model{
		ctx:      ctx,
		cfg:      cfg,
		events:   events,
		stop:     stop,
		sources:  map[model.SourceID]*sourceStatus{},
		store:    model.NewStore(),
		filter:   cfg.Filter,
		index:    filter.NewIndex(cfg.Filter),
		vp:       view.New(0),
		editor:   editor.New(nil),
		keymap:   DefaultKeyMap(),
		editKeys: DefaultEditKeyMap(),
		help:     help.New(),
		spin:     spinner.New(),
		styles:   NewStyles(cfg.Theme != config.ThemeLight),
		modalVP:  viewport.New(80, 20),
	}
	m.spin.Spinner = spinner.Dot
	for _, src := range sources {
		m.sources[src.ID] = &sourceStatus{src: src}
		m.order = append(m.order, src.ID)
	}
	return m
}

// Run starts every configured source and blocks until the user quits.
func Run(ctx context.Context, cfg *config.Config) error {
	sup, err := ingest.Start(ctx, Specs(cfg), ingest.Options{Shell: cfg.Shell})
	if err != nil {
		return err
	}
	defer sup.Stop()

	m := initialModel(ctx, cfg, sup.Events(), sup.Sources(), sup.Stop)
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if cfg.UseStdin {
		// stdin carries captured data; keys come from the terminal
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, opts...)
	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		logx.Infof("ui: interrupted: %v", ctx.Err())
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spin.Tick)
}

func (m *Model) tick() tea.Cmd {
	d := m.cfg.Refresh
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}
