// Package codec converts project records to and from the flat delimited
// text file that impactd persists.
//
// The file has a fixed header row followed by one line per project:
//
//	ID,Name,Problem,Initiator,Deadline,Status,Executor
//	1,Victory Park,Litter on the paths,A. Ivanov,2025-05-01,New,Unassigned
//
// Two strategies share that layout. The legacy strategy joins fields with
// a bare comma and never escapes, so a comma inside a value shifts the
// columns on the next load. The quoted strategy applies RFC 4180 quoting
// and round-trips any value.
//
// Decoding is best-effort: each malformed line is skipped and reported as a
// LineError, and decoding never fails as a whole.
package codec

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// Strategy names a codec implementation.
type Strategy string

const (
	// StrategyLegacy writes unescaped comma-joined fields.
	StrategyLegacy Strategy = "legacy"

	// StrategyQuoted writes RFC 4180 quoted fields.
	StrategyQuoted Strategy = "quoted"
)

// Header is the column row written at the top of every file.
var Header = []string{"ID", "Name", "Problem", "Initiator", "Deadline", "Status", "Executor"}

// fieldCount is the minimum number of fields in a record line.
const fieldCount = 7

// Decode errors.
var (
	ErrTooFewFields = errors.New("too few fields")
	ErrInvalidID    = errors.New("id is not a positive integer")
	ErrMalformed    = errors.New("malformed record")
)

// ErrUnknownStrategy is returned by New for an unrecognized strategy.
var ErrUnknownStrategy = errors.New("unknown codec strategy")

// LineError describes one skipped line.
type LineError struct {
	// Line is the 1-based line number in the input, header included.
	Line int

	// Text is the raw line content.
	Text string

	// Err is ErrTooFewFields, ErrInvalidID or ErrMalformed, possibly wrapped.
	Err error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Codec serializes and deserializes the record store.
type Codec interface {
	// Encode renders the header plus one line per entry, in order.
	Encode(entries []project.Entry) []byte

	// Decode parses data, skipping the header line.
	Decode(data []byte) ([]project.Entry, []LineError)

	// Strategy reports which format the codec writes.
	Strategy() Strategy
}

// New returns the codec for strategy. An empty strategy selects legacy.
func New(strategy Strategy) (Codec, error) {
	switch strategy {
	case StrategyLegacy, "":
		return Legacy{}, nil
	case StrategyQuoted:
		return Quoted{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// record flattens an entry into the column order of Header.
func record(e project.Entry) []string {
	p := e.Project
	return []string{
		fmt.Sprint(e.ID),
		p.Name,
		p.Problem,
		p.Initiator,
		p.Deadline,
		p.Status,
		p.Executor,
	}
}

// entryFromFields builds an entry from a split line. fields must hold at
// least fieldCount values; extra trailing values are ignored.
func entryFromFields(fields []string) (project.Entry, error) {
	if len(fields) < fieldCount {
		return project.Entry{}, fmt.Errorf("%w: got %d, want %d", ErrTooFewFields, len(fields), fieldCount)
	}
	id, err := parseID(fields[0])
	if err != nil {
		return project.Entry{}, err
	}
	return project.Entry{
		ID: id,
		Project: project.Project{
			Name:      fields[1],
			Problem:   fields[2],
			Initiator: fields[3],
			Deadline:  fields[4],
			Status:    fields[5],
			Executor:  fields[6],
		},
	}, nil
}
