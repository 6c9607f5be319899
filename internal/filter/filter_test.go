package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logmux/internal/model"
)

func entries(kinds ...model.StreamKind) []model.LogEntry {
	out := make([]model.LogEntry, len(kinds))
	for i, k := range kinds {
		out[i] = model.LogEntry{Seq: uint64(i + 1), Stream: k}
	}
	return out
}

func TestDefaults(t *testing.T) {
	s := Default()
	assert.True(t, s.Stdout)
	assert.True(t, s.Stderr)
	assert.True(t, s.Time)
	assert.True(t, s.Source)
	assert.False(t, s.Lines)
	assert.Equal(t, "src:stdout,stderr meta:time,source", s.String())
}

func TestAllExpandsToBothStreams(t *testing.T) {
	s := Default().WithSource(SelectAll, false)
	assert.False(t, s.Stdout)
	assert.False(t, s.Stderr)
	assert.Equal(t, "src:- meta:time,source", s.String())

	s = s.WithSource(SelectAll, true)
	assert.Equal(t, Default(), s)
}

func TestTogglesAreIdempotent(t *testing.T) {
	all := entries(model.Stdout, model.Stderr, model.Stdout)
	s := Default().WithSource(SelectStderr, false)
	again := s.WithSource(SelectStderr, false)
	assert.Equal(t, s, again)

	a, b := NewIndex(s), NewIndex(again)
	a.Sync(all)
	b.Sync(all)
	assert.Equal(t, a.Count(), b.Count())

	m := Default().WithMeta(MetaTime, true)
	assert.Equal(t, Default(), m)
}

func TestHidingNeverIncreasesCount(t *testing.T) {
	all := entries(model.Stdout, model.Stderr, model.Stderr, model.Stdout, model.Stderr)
	states := []State{
		Default(),
		Default().WithSource(SelectStdout, false),
		Default().WithSource(SelectStderr, false),
		Default().WithSource(SelectAll, false),
	}
	full := NewIndex(Default())
	full.Sync(all)
	require.Equal(t, len(all), full.Count())
	for _, s := range states {
		ix := NewIndex(s)
		ix.Sync(all)
		assert.LessOrEqual(t, ix.Count(), len(all))
		for _, sel := range []SourceSelector{SelectStdout, SelectStderr, SelectAll} {
			hidden := NewIndex(s.WithSource(sel, false))
			hidden.Sync(all)
			assert.LessOrEqual(t, hidden.Count(), ix.Count(), "hiding %s from %s", sel, s)
		}
	}
}

func TestEmptySelectionYieldsNothing(t *testing.T) {
	ix := NewIndex(Default().WithSource(SelectAll, false))
	ix.Sync(entries(model.Stdout, model.Stderr))
	assert.Equal(t, 0, ix.Count())
	assert.Equal(t, 2, ix.Scanned())
}

func TestIndexIsIncremental(t *testing.T) {
	all := entries(model.Stdout, model.Stderr, model.Stdout, model.Stderr)
	ix := NewIndex(Default().WithSource(SelectStderr, false))
	assert.Equal(t, 1, ix.Sync(all[:2]))
	assert.Equal(t, 1, ix.Sync(all))
	assert.Equal(t, 0, ix.Sync(all))
	require.Equal(t, 2, ix.Count())
	assert.Equal(t, 0, ix.At(0))
	assert.Equal(t, 2, ix.At(1))
}

func TestResetRebuildsOnStreamChange(t *testing.T) {
	all := entries(model.Stdout, model.Stderr, model.Stdout, model.Stderr)
	ix := NewIndex(Default().WithSource(SelectStderr, false))
	ix.Sync(all)
	require.Equal(t, 2, ix.Count())

	ix.Reset(Default(), all)
	require.Equal(t, 4, ix.Count())
	for i := 0; i < 4; i++ {
		assert.Equal(t, i, ix.At(i), "arrival order is preserved")
	}

	// meta-only change keeps positions
	ix.Reset(Default().WithMeta(MetaLines, true), all)
	assert.Equal(t, 4, ix.Count())
	assert.True(t, ix.State().Lines)
}

func TestLowerBound(t *testing.T) {
	all := entries(model.Stdout, model.Stderr, model.Stdout, model.Stderr, model.Stdout)
	ix := NewIndex(Default().WithSource(SelectStderr, false)) // seqs 1,3,5
	ix.Sync(all)
	assert.Equal(t, 0, ix.LowerBound(all, 1))
	assert.Equal(t, 1, ix.LowerBound(all, 2))
	assert.Equal(t, 2, ix.LowerBound(all, 5))
	assert.Equal(t, 3, ix.LowerBound(all, 6))
}

func TestParsers(t *testing.T) {
	_, err := ParseSourceSelector("stdin")
	assert.Error(t, err)
	sel, err := ParseSourceSelector("all")
	require.NoError(t, err)
	assert.Equal(t, SelectAll, sel)

	_, err = ParseMeta("filetype")
	assert.Error(t, err)
	m, err := ParseMeta("lines")
	require.NoError(t, err)
	assert.Equal(t, MetaLines, m)
}
