package filter

import (
	"fmt"
	"sort"
	"strings"

	"logmux/internal/model"
)

// SourceSelector names the stream kinds a source directive acts on.
type SourceSelector string

const (
	SelectStdout SourceSelector = "stdout"
	SelectStderr SourceSelector = "stderr"
	SelectAll    SourceSelector = "all"
)

func ParseSourceSelector(s string) (SourceSelector, error) {
	switch SourceSelector(s) {
	case SelectStdout, SelectStderr, SelectAll:
		return SourceSelector(s), nil
	}
	return "", fmt.Errorf("invalid source %q (want stdout|stderr|all)", s)
}

// Meta is a metadata column the renderer may draw next to the text.
type Meta string

const (
	MetaTime   Meta = "time"
	MetaSource Meta = "source"
	MetaLines  Meta = "lines"
)

func ParseMeta(s string) (Meta, error) {
	switch Meta(s) {
	case MetaTime, MetaSource, MetaLines:
		return Meta(s), nil
	}
	return "", fmt.Errorf("invalid meta %q (want time|source|lines)", s)
}

// State is the user-controlled visibility setting. It is a plain value:
// every change produces a new State, which keeps directive application
// atomic and makes idempotence checkable with ==.
type State struct {
	Stdout bool
	Stderr bool
	Time   bool
	Source bool
	Lines  bool
}

func Default() State {
	return State{Stdout: true, Stderr: true, Time: true, Source: true}
}

func (s State) WithSource(sel SourceSelector, visible bool) State {
	switch sel {
	case SelectStdout:
		s.Stdout = visible
	case SelectStderr:
		s.Stderr = visible
	case SelectAll:
		s.Stdout, s.Stderr = visible, visible
	}
	return s
}

func (s State) WithMeta(m Meta, visible bool) State {
	switch m {
	case MetaTime:
		s.Time = visible
	case MetaSource:
		s.Source = visible
	case MetaLines:
		s.Lines = visible
	}
	return s
}

func (s State) StreamVisible(k model.StreamKind) bool {
	switch k {
	case model.Stdout:
		return s.Stdout
	case model.Stderr:
		return s.Stderr
	}
	return false
}

func (s State) MetaVisible(m Meta) bool {
	switch m {
	case MetaTime:
		return s.Time
	case MetaSource:
		return s.Source
	case MetaLines:
		return s.Lines
	}
	return false
}

// Visible is the filter predicate; it only looks at the entry's stream.
func (s State) Visible(e model.LogEntry) bool { return s.StreamVisible(e.Stream) }

// String summarises the state for the status bar, e.g. "src:stdout,stderr meta:time,source".
func (s State) String() string {
	var src, meta []string
	if s.Stdout {
		src = append(src, "stdout")
	}
	if s.Stderr {
		src = append(src, "stderr")
	}
	for _, m := range []Meta{MetaTime, MetaSource, MetaLines} {
		if s.MetaVisible(m) {
			meta = append(meta, string(m))
		}
	}
	if len(src) == 0 {
		src = []string{"-"}
	}
	if len(meta) == 0 {
		meta = []string{"-"}
	}
	return "src:" + strings.Join(src, ",") + " meta:" + strings.Join(meta, ",")
}

// Index maps filtered positions to positions in the store. It grows by
// looking only at entries it has not seen and is rebuilt from scratch
// only when the State changes.
type Index struct {
	state   State
	pos     []int
	scanned int
}

func NewIndex(s State) *Index { return &Index{state: s} }

func (ix *Index) State() State { return ix.state }

// Sync extends the index with entries[scanned:]. entries must be a
// snapshot of the same store the index was built from.
func (ix *Index) Sync(entries []model.LogEntry) (added int) {
	for i := ix.scanned; i < len(entries); i++ {
		if ix.state.Visible(entries[i]) {
			ix.pos = append(ix.pos, i)
			added++
		}
	}
	if len(entries) > ix.scanned {
		ix.scanned = len(entries)
	}
	return added
}

// Reset installs a new State and rebuilds the index over entries.
// An unchanged stream selection keeps the existing positions.
func (ix *Index) Reset(s State, entries []model.LogEntry) {
	sameStreams := s.Stdout == ix.state.Stdout && s.Stderr == ix.state.Stderr
	ix.state = s
	if sameStreams {
		ix.Sync(entries)
		return
	}
	ix.pos = ix.pos[:0]
	ix.scanned = 0
	ix.Sync(entries)
}

func (ix *Index) Count() int { return len(ix.pos) }

// Scanned reports how many store entries the index has looked at.
func (ix *Index) Scanned() int { return ix.scanned }

// At returns the store position of the i-th filtered entry.
func (ix *Index) At(i int) int { return ix.pos[i] }

// LowerBound returns the first filtered position whose entry has a
// sequence number >= seq, or Count() if there is none.
func (ix *Index) LowerBound(entries []model.LogEntry, seq uint64) int {
	return sort.Search(len(ix.pos), func(i int) bool {
		return entries[ix.pos[i]].Seq >= seq
	})
}
