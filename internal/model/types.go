package model

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// StreamKind is the output channel a line was captured from.
type StreamKind string

const (
	Stdout StreamKind = "stdout"
	Stderr StreamKind = "stderr"
)

func ParseStreamKind(s string) (StreamKind, error) {
	switch StreamKind(strings.ToLower(strings.TrimSpace(s))) {
	case Stdout:
		return Stdout, nil
	case Stderr:
		return Stderr, nil
	}
	return "", fmt.Errorf("unknown stream kind %q", s)
}

// SourceID identifies one input (spawned command, followed file or stdin).
type SourceID int

type LogEntry struct {
	Seq        uint64     `json:"seq"`
	Source     SourceID   `json:"sourceId"`
	SourceName string     `json:"source"`
	Stream     StreamKind `json:"stream"`
	Time       time.Time  `json:"ts"`
	Text       string     `json:"text"`
}

// Store is the append-only log of every captured line. Entries are never
// modified or removed once appended.
type Store struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    uint64
}

func NewStore() *Store {
	return &Store{entries: make([]LogEntry, 0, 4096), next: 1}
}

// Append assigns the next sequence number to e and stores it.
func (s *Store) Append(e LogEntry) LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Seq = s.next
	s.next++
	s.entries = append(s.entries, e)
	return e
}

// Snapshot returns every entry appended so far. The returned slice is a
// stable prefix that later appends never show up in, but it shares storage
// with the store: callers must treat it as read-only.
func (s *Store) Snapshot() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	return s.entries[:n:n]
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) At(i int) (LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.entries) {
		return LogEntry{}, false
	}
	return s.entries[i], true
}
