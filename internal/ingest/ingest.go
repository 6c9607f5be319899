package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/nxadm/tail"
	"golang.org/x/sync/errgroup"

	"logmux/internal/model"
	"logmux/internal/parse"
	"logmux/internal/util/logx"
)

type SourceKind string

const (
	SourceCommand SourceKind = "command"
	SourceFile    SourceKind = "file"
	SourceStdin   SourceKind = "stdin"
)

// Spec describes one input to capture.
type Spec struct {
	Kind    SourceKind
	Name    string // display label; derived from Command/Path when empty
	Command string // SourceCommand: shell command line
	Path    string // SourceFile: path to follow
}

type Source struct {
	ID   model.SourceID
	Name string
	Kind SourceKind
	Spec Spec
}

type EventKind int

const (
	EventLine EventKind = iota
	EventStarted
	EventSpawnFailed
	EventStreamError
	EventExited
)

func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventStarted:
		return "started"
	case EventSpawnFailed:
		return "spawn-failed"
	case EventStreamError:
		return "stream-error"
	case EventExited:
		return "exited"
	}
	return "unknown"
}

// Event is what the readers hand to the UI loop. Only EventLine carries
// text; the others report source lifecycle.
type Event struct {
	Kind     EventKind
	Source   Source
	Stream   model.StreamKind
	Text     string
	When     time.Time
	Err      error
	ExitCode int
}

// Entry converts a line event into a store entry (Seq is assigned by the store).
func (e Event) Entry() model.LogEntry {
	return model.LogEntry{
		Source:     e.Source.ID,
		SourceName: e.Source.Name,
		Stream:     e.Stream,
		Time:       e.When,
		Text:       e.Text,
	}
}

type Options struct {
	// Shell, when set, runs each command as `<shell> -c <command>`. Empty
	// splits the command on whitespace and execs argv[0] from PATH.
	Shell       string
	Dir         string
	BufferSize  int // capacity of the fan-in channel
	ReadBufSize int // bufio reader size per stream
	Poll        bool
	Stdin       io.Reader // used by SourceStdin; defaults to os.Stdin
}

var ErrNoSources = errors.New("no source could be started")

// Supervisor owns every spawned process and reader goroutine and merges
// their output into one channel.
type Supervisor struct {
	opt     Options
	sources []Source
	events  chan Event
	cancel  context.CancelFunc
	ctx     context.Context
	wg      sync.WaitGroup
	mu      sync.Mutex
	cmds    map[model.SourceID]*exec.Cmd
}

// Start launches every spec. Sources that fail to start are reported with
// EventSpawnFailed; Start itself fails only when nothing could be started.
func Start(ctx context.Context, specs []Spec, opt Options) (*Supervisor, error) {
	if opt.BufferSize <= 0 {
		opt.BufferSize = 4096
	}
	if opt.ReadBufSize <= 0 {
		opt.ReadBufSize = 64 * 1024
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &Supervisor{
		opt:    opt,
		events: make(chan Event, opt.BufferSize),
		cancel: cancel,
		ctx:    sctx,
		cmds:   map[model.SourceID]*exec.Cmd{},
	}
	var errs []error
	started := 0
	seen := map[string]int{}
	for i, sp := range specs {
		name := sp.label()
		if seen[name]++; seen[name] > 1 {
			name = fmt.Sprintf("%s#%d", name, seen[name])
		}
		src := Source{ID: model.SourceID(i + 1), Name: name, Kind: sp.Kind, Spec: sp}
		s.sources = append(s.sources, src)
		if err := s.launch(src); err != nil {
			logx.Errorf("ingest: %s %q: %v", src.Kind, src.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			s.send(Event{Kind: EventSpawnFailed, Source: src, Err: err, When: time.Now()})
			continue
		}
		started++
	}
	if started == 0 {
		cancel()
		if len(errs) == 0 {
			return nil, ErrNoSources
		}
		return nil, fmt.Errorf("%w: %w", ErrNoSources, errors.Join(errs...))
	}
	go func() {
		s.wg.Wait()
		close(s.events)
	}()
	return s, nil
}

func (sp Spec) label() string {
	if sp.Name != "" {
		return sp.Name
	}
	switch sp.Kind {
	case SourceCommand:
		f := strings.Fields(sp.Command)
		if len(f) > 0 {
			return f[0]
		}
		return "cmd"
	case SourceFile:
		p := strings.TrimRight(sp.Path, "/")
		if i := strings.LastIndex(p, "/"); i >= 0 {
			return p[i+1:]
		}
		return p
	}
	return string(sp.Kind)
}

func (s *Supervisor) Events() <-chan Event { return s.events }
func (s *Supervisor) Sources() []Source { return s.sources }

// Stop cancels every reader and kills running processes. Events already
// buffered stay readable until the channel is drained.
func (s *Supervisor) Stop() { s.cancel() }

// Wait blocks until every reader has returned.
func (s *Supervisor) Wait() { s.wg.Wait() }

func (s *Supervisor) send(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Supervisor) launch(src Source) error {
	switch src.Kind {
	case SourceCommand:
		return s.startCommand(src)
	case SourceFile:
		return s.startFile(src)
	case SourceStdin:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.send(Event{Kind: EventStarted, Source: src, When: time.Now()})
			err := s.readStream(src, model.Stdout, s.opt.Stdin)
			if err != nil {
				s.send(Event{Kind: EventStreamError, Source: src, Stream: model.Stdout, Err: err, When: time.Now()})
			}
			s.send(Event{Kind: EventExited, Source: src, When: time.Now()})
		}()
		return nil
	}
	return fmt.Errorf("unknown source kind %q", src.Kind)
}

func (s *Supervisor) startCommand(src Source) error {
	if strings.TrimSpace(src.Spec.Command) == "" {
		return errors.New("empty command")
	}
	var cmd *exec.Cmd
	if s.opt.Shell == "" {
		argv := strings.Fields(src.Spec.Command)
		path, err := exec.LookPath(argv[0])
		if err != nil {
			return err
		}
		cmd = exec.CommandContext(s.ctx, path, argv[1:]...)
	} else {
		cmd = exec.CommandContext(s.ctx, s.opt.Shell, "-c", src.Spec.Command)
	}
	cmd.Dir = s.opt.Dir
	cmd.WaitDelay = 2 * time.Second
	setProcessGroup(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	s.mu.Lock()
	s.cmds[src.ID] = cmd
	s.mu.Unlock()
	logx.Infof("ingest: started %q pid=%d", src.Spec.Command, cmd.Process.Pid)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.send(Event{Kind: EventStarted, Source: src, When: time.Now()})
		// Both pipes must hit EOF before Wait closes them.
		var g errgroup.Group
		for _, st := range []struct {
			kind model.StreamKind
			r    io.Reader
		}{{model.Stdout, stdout}, {model.Stderr, stderr}} {
			st := st
			g.Go(func() error {
				if err := s.readStream(src, st.kind, st.r); err != nil {
					logx.Warnf("ingest: %s %s read: %v", src.Name, st.kind, err)
					s.send(Event{Kind: EventStreamError, Source: src, Stream: st.kind, Err: err, When: time.Now()})
				}
				return nil
			})
		}
		_ = g.Wait()
		code := 0
		werr := cmd.Wait()
		if werr != nil {
			var ee *exec.ExitError
			if errors.As(werr, &ee) {
				code = ee.ExitCode()
			} else {
				code = -1
			}
		}
		s.mu.Lock()
		delete(s.cmds, src.ID)
		s.mu.Unlock()
		logx.Infof("ingest: %q exited code=%d", src.Spec.Command, code)
		s.send(Event{Kind: EventExited, Source: src, ExitCode: code, Err: werr, When: time.Now()})
	}()
	return nil
}

// readStream emits one event per line until EOF; a final line without a
// newline is still emitted. Any other read error ends only this stream.
func (s *Supervisor) readStream(src Source, kind model.StreamKind, r io.Reader) error {
	in := bufio.NewReaderSize(r, s.opt.ReadBufSize)
	for {
		line, err := in.ReadString('\n')
		if len(line) > 0 {
			if !s.send(Event{Kind: EventLine, Source: src, Stream: kind, Text: parse.Line(line), When: time.Now()}) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			if s.ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (s *Supervisor) startFile(src Source) error {
	t, err := tail.TailFile(src.Spec.Path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      s.opt.Poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	logx.Infof("ingest: following %s", src.Spec.Path)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer t.Cleanup()
		s.send(Event{Kind: EventStarted, Source: src, When: time.Now()})
		for {
			select {
			case <-s.ctx.Done():
				_ = t.Stop()
				return
			case l, ok := <-t.Lines:
				if !ok {
					if err := t.Err(); err != nil {
						s.send(Event{Kind: EventStreamError, Source: src, Stream: model.Stdout, Err: err, When: time.Now()})
					}
					s.send(Event{Kind: EventExited, Source: src, When: time.Now()})
					return
				}
				if l.Err != nil {
					s.send(Event{Kind: EventStreamError, Source: src, Stream: model.Stdout, Err: l.Err, When: time.Now()})
					continue
				}
				if !s.send(Event{Kind: EventLine, Source: src, Stream: model.Stdout, Text: parse.Line(l.Text), When: l.Time}) {
					return
				}
			}
		}
	}()
	return nil
}

// Signal forwards sig to every command that has not been reaped yet.
func (s *Supervisor) Signal(sig os.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cmds {
		_ = c.Process.Signal(sig)
	}
}
