// Package activity keeps an append-only audit trail of ledger mutations in
// logs/activity.csv under the project directory.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivanvaic99/fintrack/internal/model"
)

// Action names a kind of mutation.
type Action string

const (
	ActionInit   Action = "init"
	ActionAdd    Action = "add"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
	ActionExport Action = "export"
)

// Entry is one row in the activity log. TransactionID and BatchID are zero
// when they do not apply.
type Entry struct {
	Timestamp     time.Time
	Action        Action
	Details       string
	TransactionID model.ID
	BatchID       uuid.UUID
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,action,details,transaction_id,batch_id"

// File is the log location relative to the project directory.
var File = filepath.Join("logs", "activity.csv")

const (
	numFields        = 5
	colTimestamp     = 0
	colAction        = 1
	colDetails       = 2
	colTransactionID = 3
	colBatchID       = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	if e.TransactionID != 0 {
		row[colTransactionID] = e.TransactionID.String()
	}
	if e.BatchID != uuid.Nil {
		row[colBatchID] = e.BatchID.String()
	}
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp: ts,
		Action:    Action(record[colAction]),
		Details:   record[colDetails],
	}
	if s := record[colTransactionID]; s != "" {
		if e.TransactionID, err = model.ParseID(s); err != nil {
			return Entry{}, err
		}
	}
	if s := record[colBatchID]; s != "" {
		if e.BatchID, err = uuid.Parse(s); err != nil {
			return Entry{}, fmt.Errorf("parsing batch id %q: %w", s, err)
		}
	}
	return e, nil
}

// Append writes entries to <root>/logs/activity.csv, creating the file and
// header if needed.
func Append(root string, entries ...Entry) error {
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in <root>/logs/activity.csv, or nothing if the
// log does not exist yet.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, File))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
