package logx

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	Debug = zapcore.DebugLevel
	Info  = zapcore.InfoLevel
	Warn  = zapcore.WarnLevel
	Error = zapcore.ErrorLevel
)

const maxLines = 500

// ringSink keeps the last maxLines encoded log lines for the in-app log view.
// Application logs never go to the terminal by default since the TUI owns it.
type ringSink struct {
	mu  sync.Mutex
	buf []string
}

func (r *ringSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) >= maxLines {
		copy(r.buf[0:], r.buf[1:])
		r.buf = r.buf[:len(r.buf)-1]
	}
	r.buf = append(r.buf, line)
	return len(p), nil
}

func (r *ringSink) Sync() error { return nil }

func (r *ringSink) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.buf))
	copy(out, r.buf)
	return out
}

var (
	mu     sync.Mutex
	level  = zap.NewAtomicLevelAt(Info)
	ring   = &ringSink{buf: make([]string, 0, maxLines)}
	sugar  = build(nil)
	closer func() error
)

func encoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02T15:04:05.000Z07:00"))
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

func build(extra []zapcore.WriteSyncer) *zap.SugaredLogger {
	cores := []zapcore.Core{zapcore.NewCore(encoder(), ring, level)}
	for _, ws := range extra {
		cores = append(cores, zapcore.NewCore(encoder(), ws, level))
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func SetLevel(l Level) { level.SetLevel(l) }

// SetLevelFromEnv reads LOGMUX_LOG_LEVEL, and wires LOGMUX_LOG_STDERR=1 and
// LOGMUX_LOG_FILE=path as additional sinks.
func SetLevelFromEnv() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOGMUX_LOG_LEVEL"))) {
	case "debug":
		SetLevel(Debug)
	case "info":
		SetLevel(Info)
	case "warn", "warning":
		SetLevel(Warn)
	case "error":
		SetLevel(Error)
	}
	var extra []zapcore.WriteSyncer
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("LOGMUX_LOG_STDERR"))); v != "" && v != "0" && v != "false" && v != "no" {
		extra = append(extra, zapcore.Lock(os.Stderr))
	}
	var f *os.File
	if p := strings.TrimSpace(os.Getenv("LOGMUX_LOG_FILE")); p != "" {
		var err error
		f, err = os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			extra = append(extra, zapcore.AddSync(f))
		}
	}
	mu.Lock()
	sugar = build(extra)
	if f != nil {
		closer = f.Close
	}
	mu.Unlock()
	if f == nil && os.Getenv("LOGMUX_LOG_FILE") != "" {
		Warnf("log file %q could not be opened", os.Getenv("LOGMUX_LOG_FILE"))
	}
}

func logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

func Debugf(format string, a ...any) { logger().Debugf(format, a...) }
func Infof(format string, a ...any)  { logger().Infof(format, a...) }
func Warnf(format string, a ...any)  { logger().Warnf(format, a...) }
func Errorf(format string, a ...any) { logger().Errorf(format, a...) }

// Close flushes and releases the file sink, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if closer != nil {
		err := closer()
		closer = nil
		return err
	}
	return nil
}

func Dump() string { return strings.Join(ring.lines(), "\n") }

func Lines() []string { return ring.lines() }
