package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ivanvaic99/fintrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps transactions in a SQLite database. Amounts are stored as
// decimal text so they round-trip exactly; ids come from AUTOINCREMENT and
// are never reused.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (or creates) the database at dbPath and migrates it.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite backend needs a database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, storageErr("open", fmt.Errorf("create db directory: %w", err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storageErr("open", fmt.Errorf("open sqlite database: %w", err))
	}

	// One connection keeps writes ordered.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storageErr("open", fmt.Errorf("ping database: %w", err))
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, storageErr("open", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, d model.Draft) (model.ID, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (amount, category, type, date, note) VALUES (?, ?, ?, ?, ?)`,
		d.Amount.String(), string(d.Category), string(d.Type), model.FormatDate(d.Date), d.Note)
	if err != nil {
		return 0, storageErr("insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert", fmt.Errorf("read inserted id: %w", err))
	}

	slog.DebugContext(ctx, "transaction saved to SQLite",
		"component", "storage",
		"id", id,
		"amount", d.Amount.String(),
		"category", d.Category,
		"type", d.Type)

	return model.ID(id), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id model.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, int64(id))
	if err != nil {
		return storageErr("delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.DebugContext(ctx, "delete of absent transaction", "component", "storage", "id", id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, category, type, date, note FROM transactions ORDER BY id ASC`)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			id                               int64
			amount, category, typ, day, note string
		)
		if err := rows.Scan(&id, &amount, &category, &typ, &day, &note); err != nil {
			return nil, storageErr("list", fmt.Errorf("scan transaction: %w", err))
		}

		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, storageErr("list", fmt.Errorf("transaction %d: parsing amount %q: %w", id, amount, err))
		}
		d, err := model.ParseDate(day)
		if err != nil {
			return nil, storageErr("list", fmt.Errorf("transaction %d: %w", id, err))
		}

		out = append(out, model.Transaction{
			ID:       model.ID(id),
			Amount:   amt,
			Category: model.Category(category),
			Type:     model.Type(typ),
			Date:     d,
			Note:     note,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}
