package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ivanvaic99/fintrack/internal/ledgercsv"
	"github.com/ivanvaic99/fintrack/internal/model"
)

// FileName is the ledger file inside a FileStore directory.
const FileName = "ledger.csv"

// FileStore keeps the ledger as a CSV file in a directory, so the data can
// be diffed and committed alongside the project. Identifiers are max+1 over
// the live rows.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("csv backend needs a data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("open", fmt.Errorf("creating data dir: %w", err))
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the ledger file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Insert appends d to the ledger file, writing the header if the file is
// missing or empty.
func (s *FileStore) Insert(ctx context.Context, d model.Draft) (model.ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, storageErr("insert", err)
	}

	existing, err := s.read()
	if err != nil {
		return 0, storageErr("insert", err)
	}

	var maxID model.ID
	for _, t := range existing {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	txn := d.WithID(maxID + 1)

	path := s.Path()
	isNew := false
	if fi, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) || (err == nil && fi.Size() == 0) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, storageErr("insert", fmt.Errorf("opening ledger: %w", err))
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, ledgercsv.Header); err != nil {
			return 0, storageErr("insert", fmt.Errorf("writing header: %w", err))
		}
	}

	if err := ledgercsv.AppendRows(f, []model.Transaction{txn}); err != nil {
		return 0, storageErr("insert", err)
	}
	if err := f.Sync(); err != nil {
		return 0, storageErr("insert", fmt.Errorf("syncing ledger: %w", err))
	}

	slog.Debug("transaction appended", "component", "storage", "backend", BackendCSV, "id", txn.ID)
	return txn.ID, nil
}

// Delete rewrites the ledger without id. The file is replaced atomically.
func (s *FileStore) Delete(ctx context.Context, id model.ID) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete", err)
	}

	existing, err := s.read()
	if err != nil {
		return storageErr("delete", err)
	}

	kept := existing[:0:0]
	for _, t := range existing {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(existing) {
		return nil
	}

	if err := s.rewrite(kept); err != nil {
		return storageErr("delete", err)
	}
	slog.Debug("transaction removed", "component", "storage", "backend", BackendCSV, "id", id)
	return nil
}

// List reads every row of the ledger file.
func (s *FileStore) List(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	txns, err := s.read()
	if err != nil {
		return nil, storageErr("list", err)
	}
	return txns, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() ([]model.Transaction, error) {
	path := s.Path()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ledgercsv.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

func (s *FileStore) rewrite(txns []model.Transaction) error {
	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintln(tmp, ledgercsv.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := ledgercsv.AppendRows(tmp, txns); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
