package codec

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// Legacy is the unescaped comma-joined format the first version of the
// bot wrote. It stays the default so existing files and the dashboard
// keep reading it.
type Legacy struct{}

// Strategy implements Codec.
func (Legacy) Strategy() Strategy { return StrategyLegacy }

// lineBreaks flattens embedded newlines, which would otherwise split a
// record across two lines.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Encode implements Codec.
func (Legacy) Encode(entries []project.Entry) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteByte('\n')
	for _, e := range entries {
		fields := record(e)
		for i := range fields {
			fields[i] = lineBreaks.Replace(fields[i])
		}
		buf.WriteString(strings.Join(fields, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode implements Codec. Lines have no length limit.
func (Legacy) Decode(data []byte) ([]project.Entry, []LineError) {
	var (
		entries []project.Entry
		skipped []LineError
	)

	r := bufio.NewReader(bytes.NewReader(data))
	for lineNo := 1; ; lineNo++ {
		raw, err := r.ReadString('\n')
		if raw == "" && err != nil {
			if !errors.Is(err, io.EOF) {
				skipped = append(skipped, LineError{Line: lineNo, Err: errors.Join(ErrMalformed, err)})
			}
			break
		}

		line := strings.TrimRight(raw, "\r\n")
		if lineNo == 1 || strings.TrimSpace(line) == "" {
			continue // header or blank
		}

		e, perr := entryFromFields(strings.Split(line, ","))
		if perr != nil {
			skipped = append(skipped, LineError{Line: lineNo, Text: line, Err: perr})
			continue
		}
		entries = append(entries, e)
	}

	return entries, skipped
}

// parseID parses a record ID column.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
