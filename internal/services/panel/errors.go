package panel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInput is wrapped by every error Build returns.
var ErrInput = errors.New("invalid panel input")

// Kinds of input error. An *InputError matches both ErrInput and its kind.
var (
	ErrNoSeries       = errors.New("no series")
	ErrDuplicateID    = errors.New("duplicate column id")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrInvalidRule    = errors.New("invalid rule")
	ErrInvalidWindow  = errors.New("invalid window")
	ErrUnsortedIndex  = errors.New("index not strictly increasing")
	ErrMalformedInput = errors.New("malformed series")
)

// InputError describes the offending input so callers can report it.
type InputError struct {
	Kind   error
	Rule   string // series, manual, unit, fill, fallback, override, drop, window, grid
	Column string
	Index  int // position in the offending index or rule list, -1 when not applicable
	Reason string
}

func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInput.Error())
	if e.Rule != "" {
		b.WriteString(": ")
		b.WriteString(e.Rule)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " %q", e.Column)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at %d", e.Index)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *InputError) Unwrap() []error {
	return []error{ErrInput, e.Kind}
}

func inputErr(kind error, rule, column string, index int, format string, args ...any) *InputError {
	return &InputError{
		Kind:   kind,
		Rule:   rule,
		Column: column,
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}
