package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvaic99/fintrack/internal/ledger"
	"github.com/ivanvaic99/fintrack/internal/ledgercsv"
	"github.com/ivanvaic99/fintrack/internal/model"
	"github.com/ivanvaic99/fintrack/internal/view"
)

// flakyStore wraps a MemoryStore and fails inserts after failAfter
// successes, or deletes when failDelete is set.
type flakyStore struct {
	*ledger.MemoryStore
	inserts    int
	failAfter  int
	failDelete bool
}

var errDiskFull = errors.New("disk full")

func (s *flakyStore) Insert(ctx context.Context, d model.Draft) (model.ID, error) {
	if s.failAfter >= 0 && s.inserts >= s.failAfter {
		return 0, &ledger.StorageError{Op: "insert", Err: errDiskFull}
	}
	s.inserts++
	return s.MemoryStore.Insert(ctx, d)
}

func (s *flakyStore) Delete(ctx context.Context, id model.ID) error {
	if s.failDelete {
		return &ledger.StorageError{Op: "delete", Err: errDiskFull}
	}
	return s.MemoryStore.Delete(ctx, id)
}

func newFlaky() *flakyStore {
	return &flakyStore{MemoryStore: ledger.NewMemoryStore(), failAfter: -1}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func food(amount string, day time.Time, note string) model.Draft {
	return model.Draft{
		Amount:   decimal.RequireFromString(amount),
		Category: model.CategoryFood,
		Type:     model.TypeExpense,
		Date:     day,
		Note:     note,
	}
}

func open(t *testing.T, store ledger.Store, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := Open(context.Background(), store, opts...)
	require.NoError(t, err)
	return s
}

func TestOpen_LoadsExistingTransactions(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	_, err := store.Insert(ctx, food("10", date(2024, 1, 2), "a"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, food("20", date(2024, 1, 1), "b"))
	require.NoError(t, err)

	s := open(t, store)
	txns := s.State().Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, "a", txns[0].Note, "mirror keeps insertion order")
	assert.Equal(t, "b", txns[1].Note)
}

func TestOpen_StorageFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, ledger.NewMemoryStore())
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStorage)
}

func TestAddTransaction(t *testing.T) {
	s := open(t, ledger.NewMemoryStore())

	got, err := s.AddTransaction(context.Background(), food("12.40", date(2024, 1, 3), "Groceries"))
	require.NoError(t, err)
	assert.NotZero(t, got.ID)

	mirrored, ok := s.State().Find(got.ID)
	require.True(t, ok)
	assert.Equal(t, got, mirrored)
}

func TestAddTransaction_ValidationFailure(t *testing.T) {
	store := newFlaky()
	s := open(t, store)

	bad := food("-1", date(2024, 1, 3), "")
	_, err := s.AddTransaction(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	noDate := food("1", time.Time{}, "")
	_, err = s.AddTransaction(context.Background(), noDate)
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Zero(t, s.State().Len())
	assert.Zero(t, store.inserts, "invalid drafts never reach the store")
}

func TestAddTransaction_StorageFailureLeavesMirror(t *testing.T) {
	store := newFlaky()
	store.failAfter = 0
	s := open(t, store)

	_, err := s.AddTransaction(context.Background(), food("5", date(2024, 1, 3), ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStorage)
	assert.Zero(t, s.State().Len())
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	s := open(t, ledger.NewMemoryStore())
	a, err := s.AddTransaction(ctx, food("1", date(2024, 1, 1), ""))
	require.NoError(t, err)
	b, err := s.AddTransaction(ctx, food("2", date(2024, 1, 2), ""))
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, a.ID))
	_, ok := s.State().Find(a.ID)
	assert.False(t, ok)
	_, ok = s.State().Find(b.ID)
	assert.True(t, ok)
}

func TestDeleteTransaction_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	s := open(t, ledger.NewMemoryStore())
	_, err := s.AddTransaction(ctx, food("1", date(2024, 1, 1), ""))
	require.NoError(t, err)
	before := s.State().Transactions()

	require.NoError(t, s.DeleteTransaction(ctx, 404))
	assert.Equal(t, before, s.State().Transactions())
}

func TestDeleteTransaction_StorageFailureLeavesMirror(t *testing.T) {
	ctx := context.Background()
	store := newFlaky()
	s := open(t, store)
	a, err := s.AddTransaction(ctx, food("1", date(2024, 1, 1), ""))
	require.NoError(t, err)

	store.failDelete = true
	err = s.DeleteTransaction(ctx, a.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStorage)

	_, ok := s.State().Find(a.ID)
	assert.True(t, ok)
}

func TestStateIsAValue(t *testing.T) {
	ctx := context.Background()
	s := open(t, ledger.NewMemoryStore())
	before := s.State()

	_, err := s.AddTransaction(ctx, food("1", date(2024, 1, 1), ""))
	require.NoError(t, err)

	assert.Zero(t, before.Len(), "earlier State is not changed by later writes")
	assert.Equal(t, 1, s.State().Len())

	txns := s.State().Transactions()
	txns[0].Note = "mutated"
	assert.Empty(t, s.State().Transactions()[0].Note)
}

const importCSV = "id,amount,category,type,date,note\n" +
	"7,2500,Salary,income,2024-01-01,\n" +
	"8,12.40,Food,expense,2024-01-03,\"Lunch, \"\"on me\"\"\nthanks\"\n" +
	"9,abc,Food,expense,2024-01-04,broken\n" +
	"10,800,Rent,expense,2024-01-05,January\n"

func TestImportCSV(t *testing.T) {
	var progress []int
	s := open(t, ledger.NewMemoryStore(), WithImportProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	}))

	res, err := s.ImportCSV(context.Background(), strings.NewReader(importCSV))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.BatchID)
	require.Len(t, res.Imported, 3)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 5, res.Skipped[0].Line, "quoted newline spans lines 3-4")
	assert.ErrorIs(t, res.Skipped[0], ledgercsv.ErrDecode)
	assert.Equal(t, []int{1, 2, 3}, progress)

	txns := s.State().Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, "Lunch, \"on me\"\nthanks", txns[1].Note)
	assert.NotEqual(t, model.ID(7), txns[0].ID, "ids in the file are ignored")
}

func TestImportCSV_PartialFailure(t *testing.T) {
	store := newFlaky()
	store.failAfter = 1
	s := open(t, store)

	res, err := s.ImportCSV(context.Background(), strings.NewReader(importCSV))
	require.Error(t, err)

	pe, ok := IsPartialImport(err)
	require.True(t, ok)
	assert.Equal(t, 1, pe.Inserted)
	assert.Equal(t, 3, pe.Total)
	assert.ErrorIs(t, err, ledger.ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)

	assert.Len(t, res.Imported, 1)
	assert.Equal(t, 1, s.State().Len())

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1, "inserted prefix stays durable")
}

func TestImportCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := open(t, ledger.NewMemoryStore())

	_, err := s.ImportCSV(ctx, strings.NewReader(importCSV))
	pe, ok := IsPartialImport(err)
	require.True(t, ok)
	assert.Zero(t, pe.Inserted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportCSV_HeaderOnly(t *testing.T) {
	s := open(t, ledger.NewMemoryStore())
	res, err := s.ImportCSV(context.Background(), strings.NewReader(ledgercsv.Header))
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
	assert.Empty(t, res.Skipped)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	deliverer := FileDeliverer{Dir: filepath.Join(dir, "exports")}
	s := open(t, ledger.NewMemoryStore(), WithDeliverer(deliverer))

	_, err := s.AddTransaction(ctx, model.Draft{
		Amount:   decimal.NewFromInt(2500),
		Category: model.CategorySalary,
		Type:     model.TypeIncome,
		Date:     date(2024, 1, 1),
	})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, food("12.4", date(2024, 1, 3), "Groceries for food"))
	require.NoError(t, err)

	e, err := s.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fintrack_transactions.csv", e.Name)
	assert.Equal(t, "text/csv", e.MIMEType)

	want := "id,amount,category,type,date,note\n" +
		"1,2500,Salary,income,2024-01-01,\n" +
		"2,12.4,Food,expense,2024-01-03,Groceries for food"
	assert.Equal(t, want, string(e.Data))

	onDisk, err := os.ReadFile(deliverer.Path(ExportName))
	require.NoError(t, err)
	assert.Equal(t, want, string(onDisk))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := open(t, ledger.NewMemoryStore())
	_, err := src.AddTransaction(ctx, food("0.10", date(2024, 2, 29), `Lunch, "on me"`+"\nthanks"))
	require.NoError(t, err)
	_, err = src.AddTransaction(ctx, model.Draft{
		Amount:   decimal.RequireFromString("1000.5"),
		Category: model.CategoryFreelance,
		Type:     model.TypeIncome,
		Date:     date(2024, 3, 1),
	})
	require.NoError(t, err)

	e, err := src.ExportCSV(ctx)
	require.NoError(t, err)

	dst := open(t, ledger.NewMemoryStore())
	_, err = dst.ImportCSV(ctx, strings.NewReader(string(e.Data)))
	require.NoError(t, err)

	want := src.State().Transactions()
	got := dst.State().Transactions()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.True(t, want[i].Date.Equal(got[i].Date))
		assert.Equal(t, want[i].Note, got[i].Note)
	}
}

func TestView(t *testing.T) {
	ctx := context.Background()
	s := open(t, ledger.NewMemoryStore())
	_, err := s.AddTransaction(ctx, food("10", date(2024, 1, 31), ""))
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, food("20", date(2024, 2, 1), ""))
	require.NoError(t, err)

	res := s.View(view.Query{Month: model.Month{Year: 2024, Month: time.January}})
	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Totals.Expense.Equal(decimal.NewFromInt(10)))
}
