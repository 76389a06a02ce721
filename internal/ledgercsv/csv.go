// Package ledgercsv reads and writes the transaction interchange format:
// a header line followed by id,amount,category,type,date,note rows.
package ledgercsv

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ivanvaic99/fintrack/internal/model"
)

// Header is the first line of every exported file.
const Header = "id,amount,category,type,date,note"

const (
	numFields   = 6
	colID       = 0
	colAmount   = 1
	colCategory = 2
	colType     = 3
	colDate     = 4
	colNote     = 5
)

// ErrDecode marks a data row that could not be turned into a transaction.
var ErrDecode = errors.New("decode failed")

// RowError reports a skipped row. Line is the 1-based line the row starts on.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// DecodeResult holds the drafts decoded from a file, in file order, and the
// rows that were skipped.
type DecodeResult struct {
	Drafts  []model.Draft
	Skipped []*RowError
}

// EscapeField quotes s when it contains a comma, a double quote, "\n" or
// "\r", doubling any embedded quotes.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// MarshalTransaction converts a Transaction to its unescaped CSV fields.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID.String()
	row[colAmount] = t.Amount.String()
	row[colCategory] = string(t.Category)
	row[colType] = string(t.Type)
	row[colDate] = model.FormatDate(t.Date)
	row[colNote] = t.Note
	return row
}

// encodeLine escapes the free-text columns and joins the row. id, amount and
// date never contain delimiters and are written as-is.
func encodeLine(t model.Transaction) string {
	row := MarshalTransaction(t)
	row[colCategory] = EscapeField(row[colCategory])
	row[colType] = EscapeField(row[colType])
	row[colNote] = EscapeField(row[colNote])
	return strings.Join(row, ",")
}

// Encode renders txns as CSV text: the header and one line per transaction,
// joined by "\n" with no trailing newline.
func Encode(txns []model.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, t := range txns {
		b.WriteByte('\n')
		b.WriteString(encodeLine(t))
	}
	return b.String()
}

// Write encodes txns to w.
func Write(w io.Writer, txns []model.Transaction) error {
	if _, err := io.WriteString(w, Encode(txns)); err != nil {
		return fmt.Errorf("writing transactions CSV: %w", err)
	}
	return nil
}

// AppendRows writes txns to w without a header, one line each, every line
// terminated by "\n".
func AppendRows(w io.Writer, txns []model.Transaction) error {
	for i, t := range txns {
		if _, err := io.WriteString(w, encodeLine(t)+"\n"); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return nil
}

// Decode reads CSV text produced by Encode (or a compatible tool). The first
// record is treated as a header and skipped without inspection; the id
// column is discarded. Rows with an unparsable amount or date are skipped
// and reported in DecodeResult.Skipped.
func Decode(r io.Reader) (DecodeResult, error) {
	rr := newRecordReader(r)
	var res DecodeResult

	header := true
	for {
		rec, line, err := rr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, errUnterminatedQuote) {
			if !header {
				res.Skipped = append(res.Skipped, &RowError{Line: line, Err: err})
			}
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading transactions CSV: %w", err)
		}

		if header {
			header = false
			continue
		}

		d, err := UnmarshalDraft(rec)
		if err != nil {
			res.Skipped = append(res.Skipped, &RowError{Line: line, Err: err})
			continue
		}
		res.Drafts = append(res.Drafts, d)
	}
	return res, nil
}

// DecodeString is Decode over an in-memory string.
func DecodeString(text string) (DecodeResult, error) {
	return Decode(strings.NewReader(text))
}

// UnmarshalDraft converts a data row to a Draft. Missing trailing columns
// read as empty. Category and type are taken verbatim.
func UnmarshalDraft(record []string) (model.Draft, error) {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	amount, err := parseAmount(field(colAmount))
	if err != nil {
		return model.Draft{}, err
	}

	d, err := model.ParseDate(field(colDate))
	if err != nil {
		return model.Draft{}, err
	}

	return model.Draft{
		Amount:   amount,
		Category: model.Category(field(colCategory)),
		Type:     model.Type(field(colType)),
		Date:     d,
		Note:     field(colNote),
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, errors.New("missing amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is negative", s)
	}
	return amount, nil
}

// ReadTransactions reads a file written by Write or AppendRows, keeping ids.
// Unlike Decode it fails on the first bad row.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	rr := newRecordReader(r)

	var txns []model.Transaction
	header := true
	for {
		rec, line, err := rr.Read()
		if errors.Is(err, io.EOF) {
			return txns, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading transactions CSV: line %d: %w", line, err)
		}
		if header {
			header = false
			continue
		}

		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, t)
	}
}

// UnmarshalTransaction converts a full row, including its id.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := model.ParseID(record[colID])
	if err != nil {
		return model.Transaction{}, err
	}

	d, err := UnmarshalDraft(record)
	if err != nil {
		return model.Transaction{}, err
	}
	return d.WithID(id), nil
}
