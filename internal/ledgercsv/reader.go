package ledgercsv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errUnterminatedQuote = errors.New("quoted field not terminated")

// recordReader splits CSV text into records. Outside quotes a comma ends a
// field and "\n" or "\r\n" ends a record; inside quotes every byte is kept
// as-is, "\r" included, and "" is a literal quote. A quote in the middle of
// an unquoted field toggles quoting the same way. Empty lines are dropped.
type recordReader struct {
	br   *bufio.Reader
	line int
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{br: bufio.NewReader(r)}
}

// Read returns the next non-empty record and the line it starts on.
// It returns io.EOF once the input is exhausted.
func (r *recordReader) Read() ([]string, int, error) {
	for {
		rec, start, err := r.readRecord()
		if err != nil || rec != nil {
			return rec, start, err
		}
	}
}

// readRecord consumes one line-terminated record. An empty line yields a nil
// record and no error.
func (r *recordReader) readRecord() ([]string, int, error) {
	start := r.line + 1
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		empty    = true
	)

	endRecord := func() ([]string, int, error) {
		r.line++
		if empty {
			return nil, start, nil
		}
		return append(fields, field.String()), start, nil
	}

	for {
		c, err := r.br.ReadByte()
		if errors.Is(err, io.EOF) {
			if empty {
				return nil, start, io.EOF
			}
			if inQuotes {
				return nil, start, errUnterminatedQuote
			}
			return append(fields, field.String()), start, nil
		}
		if err != nil {
			return nil, start, err
		}

		switch {
		case c == '"' && inQuotes:
			next, err := r.br.Peek(1)
			if err == nil && next[0] == '"' {
				_, _ = r.br.ReadByte()
				field.WriteByte('"')
			} else {
				inQuotes = false
			}
		case c == '"':
			inQuotes = true
		case inQuotes:
			if c == '\n' {
				r.line++
			}
			field.WriteByte(c)
		case c == ',':
			fields = append(fields, field.String())
			field.Reset()
		case c == '\n':
			return endRecord()
		case c == '\r':
			next, err := r.br.Peek(1)
			if err == nil && next[0] == '\n' {
				_, _ = r.br.ReadByte()
				return endRecord()
			}
			if err != nil {
				return endRecord()
			}
			field.WriteByte(c)
		default:
			field.WriteByte(c)
		}
		empty = false
	}
}
