// Command loggen writes synthetic log lines to stdout and stderr. It is a
// demo and test source for logmux:
//
//	logmux 'loggen -rate 20' 'loggen -rate 5 -stderr-ratio 0.8 -ansi'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var (
		rate        float64
		durationStr string
		count       int
		stderrRatio float64
		format      string
		ansi        bool
		progress    bool
		exitCode    int
		seed        int64
	)
	flag.Float64Var(&rate, "rate", 5.0, "lines per second")
	flag.StringVar(&durationStr, "duration", "", "optional run duration (e.g. 30s, 2m); empty means until interrupted")
	flag.IntVar(&count, "count", 0, "stop after N lines (0 = unlimited)")
	flag.Float64Var(&stderrRatio, "stderr-ratio", 0.2, "fraction of lines written to stderr")
	flag.StringVar(&format, "format", formatText, "line format: text|json")
	flag.BoolVar(&ansi, "ansi", false, "colour the level with ANSI escapes")
	flag.BoolVar(&progress, "progress", false, "occasionally emit carriage-return progress lines")
	flag.IntVar(&exitCode, "exit", 0, "exit status when finished")
	flag.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	flag.Parse()

	if format != formatText && format != formatJSON {
		fmt.Fprintf(os.Stderr, "unsupported format: %s\n", format)
		os.Exit(2)
	}
	var deadline time.Time
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		deadline = time.Now().Add(d)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if rate <= 0 {
		rate = 1
	}

	abort := make(chan os.Signal, 1)
	signal.Notify(abort, os.Interrupt, syscall.SIGTERM)

	g := newGenerator(rand.New(rand.NewSource(seed)), format, ansi, progress)
	out := bufio.NewWriter(os.Stdout)
	errw := bufio.NewWriter(os.Stderr)
	defer out.Flush()
	defer errw.Flush()

	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; count == 0 || n <= count; n++ {
		select {
		case <-abort:
			return
		case now := <-ticker.C:
			if !deadline.IsZero() && now.After(deadline) {
				out.Flush()
				errw.Flush()
				os.Exit(exitCode)
			}
			w := out
			if g.rnd.Float64() < stderrRatio {
				w = errw
			}
			w.WriteString(g.next(n, now))
			w.WriteByte('\n')
			w.Flush()
		}
	}
	out.Flush()
	errw.Flush()
	os.Exit(exitCode)
}
