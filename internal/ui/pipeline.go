package ui

import (
	"fmt"

	"logmux/internal/config"
	"logmux/internal/ingest"
	"logmux/internal/util/logx"
)

// maxDrainPerTick bounds how many events one tick consumes so input stays
// responsive under heavy output.
const maxDrainPerTick = 2000

// Specs turns the configuration into ingest source specs: commands first,
// then files, then stdin.
func Specs(cfg *config.Config) []ingest.Spec {
	specs := make([]ingest.Spec, 0, len(cfg.Commands)+len(cfg.Files)+1)
	for _, c := range cfg.Commands {
		specs = append(specs, ingest.Spec{Kind: ingest.SourceCommand, Command: c})
	}
	for _, f := range cfg.Files {
		specs = append(specs, ingest.Spec{Kind: ingest.SourceFile, Path: f})
	}
	if cfg.UseStdin {
		specs = append(specs, ingest.Spec{Kind: ingest.SourceStdin})
	}
	return specs
}

// drain pulls pending events without blocking and folds them into the
// store, the filtered index and the viewport.
func (m *Model) drain() (appended int) {
	if m.events == nil {
		return 0
	}
	for i := 0; i < maxDrainPerTick; i++ {
		select {
		case ev, ok := <-m.events:
			if !ok {
				logx.Infof("ingest: all sources finished")
				m.events = nil
				m.syncIndex()
				return appended
			}
			if m.handleEvent(ev) {
				appended++
			}
		default:
			i = maxDrainPerTick
		}
	}
	if appended > 0 {
		m.syncIndex()
	}
	return appended
}

func (m *Model) syncIndex() {
	m.snap = m.store.Snapshot()
	m.index.Sync(m.snap)
	m.vp.SetCount(m.index.Count())
}

func (m *Model) status(src ingest.Source) *sourceStatus {
	st, ok := m.sources[src.ID]
	if !ok {
		st = &sourceStatus{src: src}
		m.sources[src.ID] = st
		m.order = append(m.order, src.ID)
	}
	return st
}

// handleEvent reports whether ev added an entry to the store.
func (m *Model) handleEvent(ev ingest.Event) bool {
	st := m.status(ev.Source)
	switch ev.Kind {
	case ingest.EventLine:
		m.store.Append(ev.Entry())
		st.lines++
		return true
	case ingest.EventStarted:
		st.state = runRunning
		logx.Debugf("ingest: %s %q started", ev.Source.Kind, ev.Source.Name)
	case ingest.EventSpawnFailed:
		st.state = runFailed
		st.err = ev.Err
		m.setError(fmt.Sprintf("%s: cannot start: %v", ev.Source.Name, ev.Err))
	case ingest.EventStreamError:
		logx.Warnf("ingest: %s %s read failed: %v", ev.Source.Name, ev.Stream, ev.Err)
		m.setError(fmt.Sprintf("%s %s: %v", ev.Source.Name, ev.Stream, ev.Err))
	case ingest.EventExited:
		st.state = runExited
		st.exitCode = ev.ExitCode
		st.err = ev.Err
		logx.Infof("ingest: %s exited with code %d", ev.Source.Name, ev.ExitCode)
		if ev.ExitCode != 0 {
			m.setError(fmt.Sprintf("%s exited with code %d", ev.Source.Name, ev.ExitCode))
		} else {
			m.setInfo(fmt.Sprintf("%s finished", ev.Source.Name))
		}
	}
	return false
}

// running reports how many sources are still producing output.
func (m *Model) running() int {
	n := 0
	for _, st := range m.sources {
		if st.state == runRunning || st.state == runPending {
			n++
		}
	}
	return n
}
