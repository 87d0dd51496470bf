package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piggybook/smsledger/internal/categorize"
	"github.com/piggybook/smsledger/internal/common"
	"github.com/piggybook/smsledger/internal/model"
	"github.com/piggybook/smsledger/internal/parser"
	"github.com/piggybook/smsledger/internal/storage"
)

// newIntegrationEngine wires the real pipeline on a temporary database,
// with external classification disabled.
func newIntegrationEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	logger := slog.Default()
	eng := New(parser.New(store, logger), categorize.New(nil, logger), store, logger)
	return eng, store
}

func approvePattern(t *testing.T, store *storage.SQLiteStorage, pattern *model.Pattern) {
	t.Helper()
	require.NoError(t, store.CreatePattern(context.Background(), pattern))
	require.NoError(t, store.UpdatePatternStatus(context.Background(), pattern.ID, model.StatusApproved))
}

func TestEndToEnd_DebitSMS(t *testing.T) {
	ctx := context.Background()
	eng, store := newIntegrationEngine(t)

	approvePattern(t, store, &model.Pattern{
		BankAddress: "HDFCBK",
		BankName:    "HDFC Bank",
		Regex:       `Rs\.(?P<amount>[\d,]+\.?\d*).*debited.*A/c.*(?P<accountNumber>XX\d+)`,
		Sample:      "Rs.500 debited from A/c XX1234",
	})

	txn, err := eng.ParseAndSave(ctx, "Rs.500 debited from A/c XX1234", "HDFCBK", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "500", txn.Amount.String())
	assert.Equal(t, "XX1234", txn.AccountNumber)
	assert.Equal(t, model.TypeDebited, txn.Type)
	assert.Equal(t, "HDFC Bank", txn.BankName)
	assert.Equal(t, "HDFCBK", txn.BankAddress)
	// Merchant is unextractable and classification is disabled.
	assert.Equal(t, "Unknown", txn.Merchant)
	assert.Equal(t, model.CategoryOthers, txn.Category)

	saved, err := store.GetTransactionsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, txn.ID, saved[0].ID)
}

func TestEndToEnd_KnownMerchantCategorized(t *testing.T) {
	ctx := context.Background()
	eng, store := newIntegrationEngine(t)

	approvePattern(t, store, &model.Pattern{
		BankAddress: "HDFCBK",
		BankName:    "HDFC Bank",
		Regex:       `Rs\.(?P<amount>[\d,]+\.?\d*) spent at (?P<merchant>[\w ]+?) via`,
	})

	txn, err := eng.ParseAndSave(ctx, "Rs.350 spent at Zomato via UPI", "HDFCBK", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Zomato", txn.Merchant)
	assert.Equal(t, model.CategoryFood, txn.Category)
}

func TestEndToEnd_UnknownBankQueued(t *testing.T) {
	ctx := context.Background()
	eng, store := newIntegrationEngine(t)

	_, err := eng.ParseAndSave(ctx, "Rs.500 debited from A/c XX1234", "UNKNOWNBK", "user-1")
	require.ErrorIs(t, err, common.ErrNoMatch)

	queued, listErr := store.GetUnparsedMessages(ctx, true)
	require.NoError(t, listErr)
	require.Len(t, queued, 1)
	assert.Equal(t, "no approved patterns for this bank address", queued[0].Reason)
}

func TestEndToEnd_PriorityDecidesWinner(t *testing.T) {
	ctx := context.Background()
	eng, store := newIntegrationEngine(t)

	approvePattern(t, store, &model.Pattern{
		BankAddress: "SBIINB",
		BankName:    "Generic",
		Regex:       `Rs (?P<amount>[\d,]+)`,
		Priority:    1,
	})
	approvePattern(t, store, &model.Pattern{
		BankAddress: "SBIINB",
		BankName:    "Specific",
		Regex:       `Rs (?P<amount>[\d,]+) (?P<type>credited|debited)`,
		Priority:    10,
	})

	txn, err := eng.ParseAndSave(ctx, "Rs 900 credited to your account", "SBIINB", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Specific", txn.BankName)
	assert.Equal(t, model.TypeCredited, txn.Type)
}
