package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"logmux/internal/filter"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var ErrNoInput = errors.New("nothing to run: pass at least one command, --file or pipe stdin")

type Config struct {
	Commands []string
	Files    []string
	UseStdin bool

	Shell string // empty: exec commands directly

	Theme      Theme
	Refresh    time.Duration
	WheelLines int
	Filter     filter.State

	ExportOut string
	Redact    bool

	ConfigPath  string
	ShowVersion bool

	// Internal
	IsPipedStdin bool
}

// File is the YAML config file layout. Pointers distinguish "unset" from
// a zero value so the file only overrides what it names.
type File struct {
	Theme      string   `yaml:"theme"`
	Shell      string   `yaml:"shell"`
	RefreshMS  int      `yaml:"refresh_ms"`
	WheelLines int      `yaml:"wheel_lines"`
	Commands   []string `yaml:"commands"`
	Files      []string `yaml:"files"`
	ExportOut  string   `yaml:"export_out"`
	Redact     *bool    `yaml:"redact"`
	Show       struct {
		Stdout *bool `yaml:"stdout"`
		Stderr *bool `yaml:"stderr"`
		Time   *bool `yaml:"time"`
		Source *bool `yaml:"source"`
		Lines  *bool `yaml:"lines"`
	} `yaml:"show"`
}

// stdinIsPipe is swapped out in tests.
var stdinIsPipe = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

func defaults() *Config {
	return &Config{
		Theme:      ThemeDark,
		Refresh:    100 * time.Millisecond,
		WheelLines: 3,
		Filter:     filter.Default(),
	}
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// Load builds the configuration from args (without the program name).
// Precedence: flags, then environment, then the YAML file, then defaults.
func Load(args []string) (*Config, error) {
	cfg := defaults()
	cfg.IsPipedStdin = stdinIsPipe()

	fs := flag.NewFlagSet("logmux", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: logmux [flags] 'command' ['command' ...]")
		fs.PrintDefaults()
	}

	var (
		files      multiFlag
		stdin      bool
		shell      string
		cfgPath    string
		theme      string
		refreshMS  int
		wheelLines int
		exportOut  string
		redact     bool
	)
	fs.Var(&files, "file", "follow a log file (repeatable)")
	fs.BoolVar(&stdin, "stdin", false, "read from stdin (default: auto if piped)")
	fs.StringVar(&shell, "shell", "", "run each command through this shell with -c instead of exec'ing it directly (env LOGMUX_SHELL)")
	fs.StringVar(&cfgPath, "config", "", "YAML config file (env LOGMUX_CONFIG)")
	fs.StringVar(&theme, "theme", string(ThemeDark), "theme: dark|light (env LOGMUX_THEME)")
	fs.IntVar(&refreshMS, "refresh-ms", 100, "UI refresh interval in milliseconds")
	fs.IntVar(&wheelLines, "wheel-lines", 3, "lines scrolled per mouse wheel step")
	fs.StringVar(&exportOut, "export-out", "", "default path for the export key (.csv or .ndjson)")
	fs.BoolVar(&redact, "redact", false, "mask e-mails and secrets in exports and copies")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// config file
	cfg.ConfigPath = os.Getenv("LOGMUX_CONFIG")
	if set["config"] {
		cfg.ConfigPath = cfgPath
	}
	if cfg.ConfigPath != "" {
		fc, err := ReadFile(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.applyFile(fc)
	}

	// environment
	if v := os.Getenv("LOGMUX_SHELL"); v != "" {
		cfg.Shell = v
	}
	if v := os.Getenv("LOGMUX_THEME"); v != "" {
		cfg.Theme = Theme(v)
	}
	if v := os.Getenv("LOGMUX_REFRESH_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOGMUX_REFRESH_MS: %w", err)
		}
		cfg.Refresh = time.Duration(n) * time.Millisecond
	}

	// flags
	if set["shell"] {
		cfg.Shell = shell
	}
	if set["theme"] {
		cfg.Theme = Theme(theme)
	}
	if set["refresh-ms"] {
		cfg.Refresh = time.Duration(refreshMS) * time.Millisecond
	}
	if set["wheel-lines"] {
		cfg.WheelLines = wheelLines
	}
	if set["export-out"] {
		cfg.ExportOut = exportOut
	}
	if set["redact"] {
		cfg.Redact = redact
	}
	cfg.Files = append(cfg.Files, files...)
	cfg.Commands = append(cfg.Commands, fs.Args()...)
	cfg.UseStdin = stdin || cfg.IsPipedStdin

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile decodes a YAML config file, rejecting unknown keys.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*File, error) {
	var fc File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &fc, nil
}

func (c *Config) applyFile(fc *File) {
	if fc.Theme != "" {
		c.Theme = Theme(fc.Theme)
	}
	if fc.Shell != "" {
		c.Shell = fc.Shell
	}
	if fc.RefreshMS != 0 {
		c.Refresh = time.Duration(fc.RefreshMS) * time.Millisecond
	}
	if fc.WheelLines != 0 {
		c.WheelLines = fc.WheelLines
	}
	if fc.ExportOut != "" {
		c.ExportOut = fc.ExportOut
	}
	if fc.Redact != nil {
		c.Redact = *fc.Redact
	}
	c.Commands = append(c.Commands, fc.Commands...)
	c.Files = append(c.Files, fc.Files...)

	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Filter.Stdout, fc.Show.Stdout)
	set(&c.Filter.Stderr, fc.Show.Stderr)
	set(&c.Filter.Time, fc.Show.Time)
	set(&c.Filter.Source, fc.Show.Source)
	set(&c.Filter.Lines, fc.Show.Lines)
}

func (c *Config) validate() error {
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("invalid theme %q (want dark|light)", c.Theme)
	}
	if c.Refresh < 10*time.Millisecond {
		return fmt.Errorf("refresh interval %s is below 10ms", c.Refresh)
	}
	if c.WheelLines < 1 {
		return fmt.Errorf("wheel-lines must be at least 1, got %d", c.WheelLines)
	}
	if len(c.Commands) == 0 && len(c.Files) == 0 && !c.UseStdin {
		return ErrNoInput
	}
	return nil
}

func (c *Config) String() string {
	shell := c.Shell
	if shell == "" {
		shell = "none"
	}
	return fmt.Sprintf("commands=%d files=%d stdin=%v shell=%s theme=%s refresh=%s filter=[%s]",
		len(c.Commands), len(c.Files), c.UseStdin, shell, c.Theme, c.Refresh, c.Filter)
}
