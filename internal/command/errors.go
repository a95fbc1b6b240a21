package command

import (
	"errors"
	"fmt"
)

// ErrNotCommand marks text that does not start with a slash command.
var ErrNotCommand = errors.New("not a command")

// Kind classifies a parse failure.
type Kind string

const (
	// KindMissingArgs means too few or empty arguments.
	KindMissingArgs Kind = "missing_args"

	// KindUnknownField means /update named a field that does not exist.
	KindUnknownField Kind = "unknown_field"

	// KindNotAnInteger means a project ID was not an integer.
	KindNotAnInteger Kind = "not_an_integer"

	// KindUnknownCommand means an unrecognized slash command.
	KindUnknownCommand Kind = "unknown_command"

	// KindTooLong means a value exceeded MaxValueLen.
	KindTooLong Kind = "too_long"
)

// Sentinels for errors.Is matching against a ParseError's kind.
var (
	ErrMissingArgs    = &ParseError{Kind: KindMissingArgs}
	ErrUnknownField   = &ParseError{Kind: KindUnknownField}
	ErrNotAnInteger   = &ParseError{Kind: KindNotAnInteger}
	ErrUnknownCommand = &ParseError{Kind: KindUnknownCommand}
	ErrTooLong        = &ParseError{Kind: KindTooLong}
)

// ParseError is a recoverable validation failure.
type ParseError struct {
	Kind    Kind
	Keyword Keyword
	Reason  string

	// ID is the target project when it parsed before the failure, else 0.
	ID int
}

func (e *ParseError) Error() string {
	if e.Keyword == "" {
		return fmt.Sprintf("parse: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s: %s", e.Keyword, e.Kind, e.Reason)
}

// Is matches any ParseError of the same Kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newParseError(kind Kind, kw Keyword, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Keyword: kw, Reason: fmt.Sprintf(format, args...)}
}
