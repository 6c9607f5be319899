package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"logmux/internal/filter"
)

var (
	ErrEmpty            = errors.New("empty command")
	ErrUnknownVerb      = errors.New("unknown command")
	ErrMissingArgument  = errors.New("missing argument")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrTooManyArguments = errors.New("too many arguments")
)

// ParseError describes why a command line was rejected.
type ParseError struct {
	Line string
	Verb string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Verb == "" {
		return e.Err.Error()
	}
	return e.Verb + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

type Verb string

const (
	ShowSource Verb = "show_source"
	HideSource Verb = "hide_source"
	ShowMeta   Verb = "show_meta"
	HideMeta   Verb = "hide_meta"
	Quit       Verb = "quit"
	Goto       Verb = "goto"
)

// aliases maps short verbs onto their canonical form.
var aliases = map[string]Verb{
	"show": ShowSource,
	"hide": HideSource,
	"q":    Quit,
}

// Usage lists the accepted command forms, for help and error hints.
var Usage = []string{
	"show_source|show stdout|stderr|all",
	"hide_source|hide stdout|stderr|all",
	"show_meta time|source|lines",
	"hide_meta time|source|lines",
	"N (jump to line N)",
	"q | quit",
}

// Directive is a parsed command line.
type Directive struct {
	Verb   Verb
	Source filter.SourceSelector
	Meta   filter.Meta
	Line   int // 1-based row for Goto
}

// IsFilter reports whether the directive changes visibility.
func (d Directive) IsFilter() bool {
	switch d.Verb {
	case ShowSource, HideSource, ShowMeta, HideMeta:
		return true
	}
	return false
}

// Apply returns st with the directive applied. Non-filter directives
// return st unchanged.
func (d Directive) Apply(st filter.State) filter.State {
	switch d.Verb {
	case ShowSource:
		return st.WithSource(d.Source, true)
	case HideSource:
		return st.WithSource(d.Source, false)
	case ShowMeta:
		return st.WithMeta(d.Meta, true)
	case HideMeta:
		return st.WithMeta(d.Meta, false)
	}
	return st
}

func (d Directive) String() string {
	switch d.Verb {
	case ShowSource, HideSource:
		return string(d.Verb) + " " + string(d.Source)
	case ShowMeta, HideMeta:
		return string(d.Verb) + " " + string(d.Meta)
	case Goto:
		return strconv.Itoa(d.Line)
	}
	return string(d.Verb)
}

// Parse turns a finished command line (without the leading ':') into a
// Directive.
func Parse(line string) (Directive, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Directive{}, &ParseError{Line: line, Err: ErrEmpty}
	}
	verb, args := fields[0], fields[1:]
	fail := func(err error) (Directive, error) {
		return Directive{}, &ParseError{Line: line, Verb: verb, Err: err}
	}

	v := Verb(verb)
	if a, ok := aliases[verb]; ok {
		v = a
	}
	switch v {
	case ShowSource, HideSource:
		arg, err := single(args)
		if err != nil {
			return fail(err)
		}
		sel, err := filter.ParseSourceSelector(arg)
		if err != nil {
			return fail(fmt.Errorf("%w %q (want stdout|stderr|all)", ErrInvalidArgument, arg))
		}
		return Directive{Verb: v, Source: sel}, nil
	case ShowMeta, HideMeta:
		arg, err := single(args)
		if err != nil {
			return fail(err)
		}
		m, err := filter.ParseMeta(arg)
		if err != nil {
			return fail(fmt.Errorf("%w %q (want time|source|lines)", ErrInvalidArgument, arg))
		}
		return Directive{Verb: v, Meta: m}, nil
	case Quit:
		if len(args) > 0 {
			return fail(ErrTooManyArguments)
		}
		return Directive{Verb: Quit}, nil
	}

	if n, err := strconv.Atoi(verb); err == nil {
		if len(args) > 0 {
			return fail(ErrTooManyArguments)
		}
		if n < 1 {
			return fail(fmt.Errorf("%w: line numbers start at 1", ErrInvalidArgument))
		}
		return Directive{Verb: Goto, Line: n}, nil
	}
	return fail(ErrUnknownVerb)
}

func single(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrMissingArgument
	case 1:
		return args[0], nil
	}
	return "", ErrTooManyArguments
}
