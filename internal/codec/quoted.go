package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// Quoted is the RFC 4180 variant of the file format. Values containing the
// delimiter, quotes or newlines are quoted, so any value round-trips.
type Quoted struct{}

// Strategy implements Codec.
func (Quoted) Strategy() Strategy { return StrategyQuoted }

// Encode implements Codec.
func (Quoted) Encode(entries []project.Entry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = w.Write(Header)
	for _, e := range entries {
		_ = w.Write(record(e))
	}
	w.Flush()
	return buf.Bytes()
}

// Decode implements Codec.
func (Quoted) Decode(data []byte) ([]project.Entry, []LineError) {
	var (
		entries []project.Entry
		skipped []LineError
	)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first := true
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, LineError{Line: perr.StartLine, Err: errors.Join(ErrMalformed, err)})
				continue
			}
			skipped = append(skipped, LineError{Err: errors.Join(ErrMalformed, err)})
			break
		}

		if first {
			first = false
			continue // header
		}
		line, _ := r.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}

		e, err := entryFromFields(fields)
		if err != nil {
			skipped = append(skipped, LineError{Line: line, Text: strings.Join(fields, ","), Err: err})
			continue
		}
		entries = append(entries, e)
	}

	return entries, skipped
}
