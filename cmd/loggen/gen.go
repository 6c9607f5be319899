package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	levels   = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}
	services = []string{"api", "auth", "worker", "db", "cache"}
	messages = []string{
		"request served",
		"cache miss for key %d",
		"retrying job %d",
		"connection reset by peer",
		"user %d logged in",
		"slow query took %dms",
		"queue depth is %d",
	}
	levelColour = map[string]string{
		"DEBUG": "\x1b[90m",
		"INFO":  "\x1b[36m",
		"WARN":  "\x1b[33m",
		"ERROR": "\x1b[31m",
	}
)

type generator struct {
	rnd      *rand.Rand
	format   string
	ansi     bool
	progress bool
}

func newGenerator(rnd *rand.Rand, format string, ansi, progress bool) *generator {
	return &generator{rnd: rnd, format: format, ansi: ansi, progress: progress}
}

func (g *generator) message() string {
	m := messages[g.rnd.Intn(len(messages))]
	if strings.Contains(m, "%d") {
		m = fmt.Sprintf(m, g.rnd.Intn(1000))
	}
	return m
}

// next renders line n.
func (g *generator) next(n int, now time.Time) string {
	level := levels[g.rnd.Intn(len(levels))]
	svc := services[g.rnd.Intn(len(services))]
	msg := g.message()

	if g.progress && g.rnd.Intn(10) == 0 {
		return progressLine(g.rnd.Intn(101))
	}
	if g.format == formatJSON {
		b, _ := json.Marshal(map[string]any{
			"ts":      now.UTC().Format(time.RFC3339Nano),
			"n":       n,
			"level":   level,
			"service": svc,
			"msg":     msg,
		})
		return string(b)
	}
	lv := level
	if g.ansi {
		lv = levelColour[level] + level + "\x1b[0m"
	}
	return fmt.Sprintf("%s %-5s [%s]\t#%d %s", now.Format("15:04:05.000"), lv, svc, n, msg)
}

// progressLine mimics a redrawn progress bar: several frames separated by
// carriage returns, the last one being what a terminal would show.
func progressLine(pct int) string {
	var b strings.Builder
	for _, p := range []int{0, pct / 2, pct} {
		fill := p / 5
		fmt.Fprintf(&b, "\r[%s%s] %3d%%", strings.Repeat("#", fill), strings.Repeat(".", 20-fill), p)
	}
	return b.String()
}
