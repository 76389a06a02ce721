// Package ledger persists transactions. A Store assigns identities on
// insert, deletes by identity and enumerates everything it holds.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivanvaic99/fintrack/internal/model"
)

// ErrStorage marks a failure of the durable medium.
var ErrStorage = errors.New("storage failure")

// StorageError wraps a backend failure. errors.Is(err, ErrStorage) holds for
// every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Store is the durable transaction collection.
type Store interface {
	// Insert persists d and returns its new, unique identifier.
	Insert(ctx context.Context, d model.Draft) (model.ID, error)
	// Delete removes the transaction with the given id. Deleting an absent
	// id is not an error.
	Delete(ctx context.Context, id model.ID) error
	// List returns every persisted transaction.
	List(ctx context.Context) ([]model.Transaction, error)
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendCSV    Backend = "csv"
	BackendMemory Backend = "memory"
)

// Backends lists the accepted backend names.
func Backends() []Backend {
	return []Backend{BackendSQLite, BackendCSV, BackendMemory}
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown storage backend %q: must be one of %v", s, Backends())
}

// Options selects and locates a backend. Path is the database file for
// sqlite and the data directory for csv; memory ignores it.
type Options struct {
	Backend Backend
	Path    string
}

// Open returns the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Path)
	case BackendCSV:
		return NewFileStore(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
