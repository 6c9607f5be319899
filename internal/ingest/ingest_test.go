package ingest

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logmux/internal/model"
)

func collect(t *testing.T, s *Supervisor, timeout time.Duration) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timed out after %d events", len(out))
		}
	}
}

func lines(evs []Event, src model.SourceID, kind model.StreamKind) []string {
	var out []string
	for _, ev := range evs {
		if ev.Kind == EventLine && ev.Source.ID == src && ev.Stream == kind {
			out = append(out, ev.Text)
		}
	}
	return out
}

func TestCommandStreamsAreSeparated(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "echo one; echo two >&2; echo three"},
	}, Options{Shell: "sh"})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)

	assert.Equal(t, []string{"one", "three"}, lines(evs, 1, model.Stdout))
	assert.Equal(t, []string{"two"}, lines(evs, 1, model.Stderr))
	last := evs[len(evs)-1]
	assert.Equal(t, EventExited, last.Kind)
	assert.Equal(t, 0, last.ExitCode)
}

func TestUnterminatedFinalLineIsEmitted(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "printf 'a\\nb'; printf 'tail' >&2"},
	}, Options{Shell: "sh"})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)
	assert.Equal(t, []string{"a", "b"}, lines(evs, 1, model.Stdout))
	assert.Equal(t, []string{"tail"}, lines(evs, 1, model.Stderr))
}

func TestExitCodeReported(t *testing.T) {
	s, err := Start(context.Background(), []Spec{{Kind: SourceCommand, Command: "echo bye; exit 3"}}, Options{Shell: "sh"})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)
	var exited *Event
	for i := range evs {
		if evs[i].Kind == EventExited {
			exited = &evs[i]
		}
	}
	require.NotNil(t, exited)
	assert.Equal(t, 3, exited.ExitCode)
	// the line is captured before the exit is reported
	assert.Equal(t, []string{"bye"}, lines(evs, 1, model.Stdout))
}

func TestMultipleSourcesKeepPerSourceOrder(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Name: "A", Command: "for i in 1 2 3 4 5; do echo a$i; done"},
		{Kind: SourceCommand, Name: "B", Command: "for i in 1 2 3 4 5; do echo b$i >&2; done"},
	}, Options{Shell: "sh"})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)
	assert.Equal(t, []string{"a1", "a2", "a3", "a4", "a5"}, lines(evs, 1, model.Stdout))
	assert.Equal(t, []string{"b1", "b2", "b3", "b4", "b5"}, lines(evs, 2, model.Stderr))
	require.Len(t, s.Sources(), 2)
	assert.Equal(t, "A", s.Sources()[0].Name)
}

func TestSpawnFailureDoesNotStopOthers(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "/definitely/not/a/binary"},
		{Kind: SourceCommand, Command: "echo alive"},
	}, Options{})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)

	require.NotEmpty(t, evs)
	assert.Equal(t, EventSpawnFailed, evs[0].Kind)
	assert.Equal(t, model.SourceID(1), evs[0].Source.ID)
	assert.Error(t, evs[0].Err)
	assert.Equal(t, []string{"alive"}, lines(evs, 2, model.Stdout))
}

func TestUnknownProgramIsSpawnFailure(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "definitely-not-a-command-xyz --flag"},
		{Kind: SourceCommand, Command: "echo alive"},
	}, Options{})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)

	require.NotEmpty(t, evs)
	assert.Equal(t, EventSpawnFailed, evs[0].Kind)
	assert.ErrorIs(t, evs[0].Err, exec.ErrNotFound)
	for _, ev := range evs {
		if ev.Source.ID == 1 {
			assert.NotEqual(t, EventExited, ev.Kind)
			assert.NotEqual(t, EventLine, ev.Kind)
		}
	}
	assert.Equal(t, []string{"alive"}, lines(evs, 2, model.Stdout))

	_, err = Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "definitely-not-a-command-xyz --flag"},
	}, Options{})
	assert.ErrorIs(t, err, ErrNoSources)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestAllSpawnsFailingIsFatal(t *testing.T) {
	_, err := Start(context.Background(), []Spec{
		{Kind: SourceCommand, Command: "/no/such/one"},
		{Kind: SourceCommand, Command: "   "},
	}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSources))

	_, err = Start(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoSources)
}

type failingReader struct{ sent bool }

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, "ok line\npartial"), nil
	}
	return 0, errors.New("boom")
}

func TestStreamReadFailureIsLocal(t *testing.T) {
	s, err := Start(context.Background(), []Spec{
		{Kind: SourceStdin},
		{Kind: SourceCommand, Command: "echo other"},
	}, Options{Stdin: &failingReader{}})
	require.NoError(t, err)
	evs := collect(t, s, 10*time.Second)

	assert.Equal(t, []string{"ok line", "partial"}, lines(evs, 1, model.Stdout))
	var streamErr bool
	for _, ev := range evs {
		if ev.Kind == EventStreamError && ev.Source.ID == 1 {
			streamErr = true
			assert.EqualError(t, ev.Err, "boom")
		}
	}
	assert.True(t, streamErr)
	assert.Equal(t, []string{"other"}, lines(evs, 2, model.Stdout))
}

func TestStdinSource(t *testing.T) {
	s, err := Start(context.Background(), []Spec{{Kind: SourceStdin}}, Options{Stdin: strings.NewReader("x\r\ny\n")})
	require.NoError(t, err)
	evs := collect(t, s, 5*time.Second)
	assert.Equal(t, []string{"x", "y"}, lines(evs, 1, model.Stdout))
	assert.Equal(t, "stdin", s.Sources()[0].Name)
}

func TestFileSourceFollowsAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(p, []byte("first\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := Start(ctx, []Spec{{Kind: SourceFile, Path: p}}, Options{Poll: true})
	require.NoError(t, err)
	assert.Equal(t, "app.log", s.Sources()[0].Name)

	next := func() Event {
		for {
			select {
			case ev := <-s.Events():
				if ev.Kind == EventLine {
					return ev
				}
			case <-time.After(10 * time.Second):
				t.Fatal("no line from followed file")
			}
		}
	}
	assert.Equal(t, "first", next().Text)

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "second", next().Text)

	s.Stop()
	s.Wait()
}

func TestStopKillsLongRunningCommand(t *testing.T) {
	s, err := Start(context.Background(), []Spec{{Kind: SourceCommand, Command: "echo ready; sleep 60"}}, Options{Shell: "sh"})
	require.NoError(t, err)
	select {
	case ev := <-s.Events():
		require.Equal(t, EventStarted, ev.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no start event")
	}
	s.Stop()
	done := make(chan struct{})
	go func() { s.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("readers did not stop")
	}
}

func TestMissingFileIsSpawnFailure(t *testing.T) {
	_, err := Start(context.Background(), []Spec{{Kind: SourceFile, Path: filepath.Join(t.TempDir(), "nope.log")}}, Options{Poll: true})
	require.ErrorIs(t, err, ErrNoSources)
}
