package editor

import (
	"slices"
	"strings"
	"unicode"
)

// Mode is the state of the command line.
type Mode int

const (
	Normal Mode = iota
	Editing
	ReverseSearch
)

func (m Mode) String() string {
	switch m {
	case Editing:
		return "editing"
	case ReverseSearch:
		return "reverse-search"
	}
	return "normal"
}

// OpKind enumerates the operations the editor understands.
type OpKind int

const (
	OpBegin OpKind = iota
	OpInsert
	OpBackspace
	OpDeleteChar
	OpLeft
	OpRight
	OpHome
	OpEnd
	OpKillToEnd
	OpKillToStart
	OpDeleteWordBackward
	OpHistoryPrev
	OpHistoryNext
	OpSearchBackward
	OpSubmit
	OpCancel
)

// Op is one input to the state machine. Rune is only used by OpInsert.
type Op struct {
	Kind OpKind
	Rune rune
}

var (
	Begin              = Op{Kind: OpBegin}
	Backspace          = Op{Kind: OpBackspace}
	DeleteChar         = Op{Kind: OpDeleteChar}
	Left               = Op{Kind: OpLeft}
	Right              = Op{Kind: OpRight}
	Home               = Op{Kind: OpHome}
	End                = Op{Kind: OpEnd}
	KillToEnd          = Op{Kind: OpKillToEnd}
	KillToStart        = Op{Kind: OpKillToStart}
	DeleteWordBackward = Op{Kind: OpDeleteWordBackward}
	HistoryPrev        = Op{Kind: OpHistoryPrev}
	HistoryNext        = Op{Kind: OpHistoryNext}
	SearchBackward     = Op{Kind: OpSearchBackward}
	Submit             = Op{Kind: OpSubmit}
	Cancel             = Op{Kind: OpCancel}
)

func Insert(r rune) Op { return Op{Kind: OpInsert, Rune: r} }

// Result is returned by every transition. Submitted is set when a
// non-empty line left the editor through Submit.
type Result struct {
	Submitted bool
	Line      string
}

// State is the whole command-line editor. It is a value: Apply never
// mutates its receiver or anything the receiver shares with other States.
// Buffer and cursor positions are counted in runes.
type State struct {
	mode    Mode
	buf     []rune
	cursor  int
	kill    string
	history []string
	histPos int // -1 when not browsing history
	draft   string

	// reverse search
	query       string
	match       int // history index of the previewed entry, -1 if none
	failing     bool
	saved       []rune
	savedCursor int
}

// New returns an editor in Normal mode with the given history, oldest
// first.
func New(history []string) State {
	return State{history: slices.Clone(history), histPos: -1, match: -1}
}

func (s State) Mode() Mode { return s.mode }
func (s State) Buffer() string { return string(s.buf) }
func (s State) Cursor() int { return s.cursor }
func (s State) KillBuffer() string { return s.kill }
func (s State) Query() string { return s.query }
func (s State) Failing() bool { return s.failing }

// History returns a copy of the submitted lines, oldest first.
func (s State) History() []string { return slices.Clone(s.history) }

// HistoryCursor reports the history entry currently loaded, if any.
func (s State) HistoryCursor() (int, bool) { return s.histPos, s.histPos >= 0 }

// Prompt renders the command line text without a cursor marker.
func (s State) Prompt() string {
	switch s.mode {
	case Editing:
		return ":" + string(s.buf)
	case ReverseSearch:
		prefix := "(reverse-i-search)"
		if s.failing {
			prefix = "(failing reverse-i-search)"
		}
		return prefix + "`" + s.query + "': " + string(s.buf)
	}
	return ""
}

// Apply returns the state that results from op. Ops that do not apply in
// the current mode leave the state unchanged.
func (s State) Apply(op Op) (State, Result) {
	switch s.mode {
	case Normal:
		if op.Kind == OpBegin {
			return s.begin(), Result{}
		}
		return s, Result{}
	case ReverseSearch:
		return s.applySearch(op)
	}
	return s.applyEdit(op)
}

func (s State) begin() State {
	s.mode = Editing
	s.buf = nil
	s.cursor = 0
	s.histPos = -1
	s.draft = ""
	s.resetSearch()
	return s
}

func (s *State) resetSearch() {
	s.query = ""
	s.match = -1
	s.failing = false
	s.saved = nil
	s.savedCursor = 0
}

// setBuf installs a fresh backing array so no two States share one.
func (s *State) setBuf(r []rune, cursor int) {
	s.buf = slices.Clip(r)
	s.cursor = min(max(cursor, 0), len(s.buf))
}

func (s State) applyEdit(op Op) (State, Result) {
	n := len(s.buf)
	switch op.Kind {
	case OpInsert:
		if !unicode.IsPrint(op.Rune) {
			return s, Result{}
		}
		s.setBuf(slices.Insert(slices.Clone(s.buf), s.cursor, op.Rune), s.cursor+1)
	case OpBackspace:
		if s.cursor > 0 {
			s.setBuf(slices.Delete(slices.Clone(s.buf), s.cursor-1, s.cursor), s.cursor-1)
		}
	case OpDeleteChar:
		if s.cursor < n {
			s.setBuf(slices.Delete(slices.Clone(s.buf), s.cursor, s.cursor+1), s.cursor)
		}
	case OpLeft:
		s.cursor = max(s.cursor-1, 0)
	case OpRight:
		s.cursor = min(s.cursor+1, n)
	case OpHome:
		s.cursor = 0
	case OpEnd:
		s.cursor = n
	case OpKillToEnd:
		if s.cursor < n {
			s.kill = string(s.buf[s.cursor:])
			s.setBuf(slices.Clone(s.buf[:s.cursor]), s.cursor)
		}
	case OpKillToStart:
		if s.cursor > 0 {
			s.kill = string(s.buf[:s.cursor])
			s.setBuf(slices.Clone(s.buf[s.cursor:]), 0)
		}
	case OpDeleteWordBackward:
		start := wordStart(s.buf, s.cursor)
		if start < s.cursor {
			s.kill = string(s.buf[start:s.cursor])
			s.setBuf(slices.Delete(slices.Clone(s.buf), start, s.cursor), start)
		}
	case OpHistoryPrev:
		return s.historyPrev(), Result{}
	case OpHistoryNext:
		return s.historyNext(), Result{}
	case OpSearchBackward:
		s.mode = ReverseSearch
		s.saved = s.buf
		s.savedCursor = s.cursor
		s.query = ""
		s.match = -1
		s.failing = false
	case OpSubmit:
		return s.submit()
	case OpCancel:
		s.mode = Normal
		s.buf = nil
		s.cursor = 0
		s.histPos = -1
		s.draft = ""
	}
	return s, Result{}
}

// wordStart returns where delete-word-backward stops: whitespace directly
// left of the cursor is skipped, then the word, then the whitespace before
// the word.
func wordStart(buf []rune, cursor int) int {
	i := cursor
	for i > 0 && unicode.IsSpace(buf[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(buf[i-1]) {
		i--
	}
	for i > 0 && unicode.IsSpace(buf[i-1]) {
		i--
	}
	return i
}

func (s State) historyPrev() State {
	if len(s.history) == 0 {
		return s
	}
	switch {
	case s.histPos < 0:
		s.draft = string(s.buf)
		s.histPos = len(s.history) - 1
	case s.histPos > 0:
		s.histPos--
	default:
		return s
	}
	line := []rune(s.history[s.histPos])
	s.setBuf(line, len(line))
	return s
}

func (s State) historyNext() State {
	if s.histPos < 0 {
		return s
	}
	var line []rune
	if s.histPos < len(s.history)-1 {
		s.histPos++
		line = []rune(s.history[s.histPos])
	} else {
		s.histPos = -1
		line = []rune(s.draft)
		s.draft = ""
	}
	s.setBuf(line, len(line))
	return s
}

func (s State) submit() (State, Result) {
	line := string(s.buf)
	s.mode = Normal
	s.buf = nil
	s.cursor = 0
	s.histPos = -1
	s.draft = ""
	s.resetSearch()
	if strings.TrimSpace(line) == "" {
		return s, Result{}
	}
	if len(s.history) == 0 || s.history[len(s.history)-1] != line {
		s.history = append(slices.Clip(s.history), line)
	}
	return s, Result{Submitted: true, Line: line}
}

// search scans history from index from down to 0 for the query.
func (s State) search(from int) State {
	if from >= len(s.history) {
		from = len(s.history) - 1
	}
	for i := from; i >= 0; i-- {
		if strings.Contains(s.history[i], s.query) {
			s.match = i
			s.failing = false
			line := []rune(s.history[i])
			s.setBuf(line, len(line))
			return s
		}
	}
	s.failing = true
	return s
}

func (s State) applySearch(op Op) (State, Result) {
	switch op.Kind {
	case OpInsert:
		if !unicode.IsPrint(op.Rune) {
			return s, Result{}
		}
		s.query += string(op.Rune)
		return s.search(len(s.history) - 1), Result{}
	case OpBackspace:
		q := []rune(s.query)
		if len(q) == 0 {
			return s, Result{}
		}
		s.query = string(q[:len(q)-1])
		if s.query == "" {
			s.match = -1
			s.failing = false
			s.setBuf(s.saved, s.savedCursor)
			return s, Result{}
		}
		return s.search(len(s.history) - 1), Result{}
	case OpSearchBackward:
		if s.query == "" {
			return s, Result{}
		}
		if s.match < 0 {
			return s.search(len(s.history) - 1), Result{}
		}
		next := s.search(s.match - 1)
		if next.failing {
			// keep showing the oldest match
			next.match = s.match
		}
		return next, Result{}
	case OpCancel:
		s.mode = Editing
		s.setBuf(s.saved, s.savedCursor)
		s.resetSearch()
		return s, Result{}
	case OpSubmit:
		return s.submit()
	case OpBegin:
		return s, Result{}
	}
	// Any other editing op accepts the preview and is replayed in Editing.
	s.mode = Editing
	s.histPos = -1
	s.resetSearch()
	return s.applyEdit(op)
}
