// Package session owns the in-memory mirror of the ledger and the commands
// that change it. Every write goes to the store first; the mirror only
// changes after the store confirms.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ivanvaic99/fintrack/internal/ledger"
	"github.com/ivanvaic99/fintrack/internal/ledgercsv"
	"github.com/ivanvaic99/fintrack/internal/model"
	"github.com/ivanvaic99/fintrack/internal/view"
)

// Session binds a store to its mirror.
type Session struct {
	store     ledger.Store
	state     State
	logger    *slog.Logger
	deliverer Deliverer
	progress  func(done, total int)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDeliverer sets where exports go.
func WithDeliverer(d Deliverer) Option {
	return func(s *Session) { s.deliverer = d }
}

// WithImportProgress registers a callback run after each imported row.
func WithImportProgress(fn func(done, total int)) Option {
	return func(s *Session) { s.progress = fn }
}

// Open loads every transaction from store into a new Session.
func Open(ctx context.Context, store ledger.Store, opts ...Option) (*Session, error) {
	s := &Session{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	txns, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	s.state = NewState(txns)

	s.logger.Debug("ledger loaded", "component", "session", "transactions", s.state.Len())
	return s, nil
}

// State returns the current mirror.
func (s *Session) State() State {
	return s.state
}

// View computes the filtered list, totals and category breakdown for q.
func (s *Session) View(q view.Query) view.Result {
	return view.Compute(s.state.txns, q)
}

// AddTransaction validates d, persists it and mirrors the stored record.
func (s *Session) AddTransaction(ctx context.Context, d model.Draft) (model.Transaction, error) {
	if err := d.Validate(); err != nil {
		return model.Transaction{}, err
	}

	id, err := s.store.Insert(ctx, d)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("adding transaction: %w", err)
	}

	t := d.WithID(id)
	s.state = s.state.withAdded(t)
	s.logger.Info("transaction added",
		"component", "session",
		"id", t.ID,
		"amount", t.Amount.String(),
		"category", t.Category,
		"type", t.Type)
	return t, nil
}

// DeleteTransaction removes id from the store and then from the mirror.
// Deleting an id that does not exist is not an error.
func (s *Session) DeleteTransaction(ctx context.Context, id model.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	s.state = s.state.withoutID(id)
	s.logger.Info("transaction deleted", "component", "session", "id", id)
	return nil
}

// ImportResult summarises an import.
type ImportResult struct {
	BatchID  uuid.UUID
	Imported []model.Transaction
	Skipped  []*ledgercsv.RowError
}

// PartialImportError reports an import that stopped after Inserted of
// Total rows. The inserted rows stay in the store and the mirror.
type PartialImportError struct {
	Inserted int
	Total    int
	Err      error
}

func (e *PartialImportError) Error() string {
	return fmt.Sprintf("import stopped after %d of %d rows: %v", e.Inserted, e.Total, e.Err)
}

func (e *PartialImportError) Unwrap() error {
	return e.Err
}

// ImportCSV decodes r and inserts the rows one at a time, in file order.
// Rows that fail to decode are skipped and listed in the result. The first
// insert failure stops the import with a *PartialImportError; rows inserted
// before it are kept.
func (s *Session) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{BatchID: uuid.New()}

	decoded, err := ledgercsv.Decode(r)
	if err != nil {
		return res, fmt.Errorf("importing CSV: %w", err)
	}
	res.Skipped = decoded.Skipped
	for _, rowErr := range decoded.Skipped {
		s.logger.Warn("skipping CSV row",
			"component", "session",
			"batch", res.BatchID,
			"line", rowErr.Line,
			"error", rowErr.Err)
	}

	total := len(decoded.Drafts)
	for i, d := range decoded.Drafts {
		if err := ctx.Err(); err != nil {
			return res, &PartialImportError{Inserted: i, Total: total, Err: err}
		}

		id, err := s.store.Insert(ctx, d)
		if err != nil {
			s.logger.Error("import aborted",
				"component", "session",
				"batch", res.BatchID,
				"inserted", i,
				"total", total,
				"error", err)
			return res, &PartialImportError{Inserted: i, Total: total, Err: err}
		}

		t := d.WithID(id)
		s.state = s.state.withAdded(t)
		res.Imported = append(res.Imported, t)

		if s.progress != nil {
			s.progress(i+1, total)
		}
	}

	s.logger.Info("import finished",
		"component", "session",
		"batch", res.BatchID,
		"imported", len(res.Imported),
		"skipped", len(res.Skipped))
	return res, nil
}

// ExportCSV encodes the mirror and hands it to the deliverer, if one is
// configured.
func (s *Session) ExportCSV(ctx context.Context) (Export, error) {
	e := Export{
		Name:     ExportName,
		MIMEType: ExportMIMEType,
		Data:     []byte(ledgercsv.Encode(s.state.txns)),
	}
	if s.deliverer == nil {
		return e, nil
	}
	if err := s.deliverer.Deliver(ctx, e); err != nil {
		return e, fmt.Errorf("delivering export: %w", err)
	}
	s.logger.Info("ledger exported", "component", "session", "transactions", s.state.Len())
	return e, nil
}

// IsPartialImport reports whether err is a *PartialImportError and returns it.
func IsPartialImport(err error) (*PartialImportError, bool) {
	var pe *PartialImportError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
