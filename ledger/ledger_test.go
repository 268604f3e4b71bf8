package ledger

import (
	"testing"

	"irac/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Wallet{}, &models.WalletTransaction{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM wallet_transactions")
		db.Exec("DELETE FROM wallets")
		db.Exec("DELETE FROM users")
	})

	return db
}

func createWallet(t *testing.T, db *gorm.DB, balance uint) *models.Wallet {
	t.Helper()

	user := models.User{Email: "wallet-owner@test.local", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	wallet := models.Wallet{UserID: user.ID, Balance: balance}
	require.NoError(t, db.Create(&wallet).Error)
	return &wallet
}

func TestApplyDeposit(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 0)

	txn, err := Apply(db, wallet.ID, models.TransactionTypeDeposit, 100000, Options{Description: "gateway deposit"})
	require.NoError(t, err)

	assert.Equal(t, uint(0), txn.BalanceBefore)
	assert.Equal(t, uint(100000), txn.BalanceAfter)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(100000), fresh.Balance)
}

func TestApplyInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 50000)

	_, err := Apply(db, wallet.ID, models.TransactionTypeWithdrawal, 60000, Options{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance unchanged and no ledger entry written
	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(50000), fresh.Balance)

	var count int64
	db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestApplyZeroAmount(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 1000)

	_, err := Apply(db, wallet.ID, models.TransactionTypeDeposit, 0, Options{})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyUnknownType(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 1000)

	_, err := Apply(db, wallet.ID, models.TransactionType("TRANSFER_OUT"), 10, Options{})
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestApplyWalletMissingOrInactive(t *testing.T) {
	db := setupTestDB(t)

	_, err := Apply(db, 9999, models.TransactionTypeDeposit, 10, Options{})
	assert.ErrorIs(t, err, ErrWalletNotFound)

	wallet := createWallet(t, db, 1000)
	require.NoError(t, db.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
		Update("status", models.WalletStatusSuspended).Error)

	_, err = Apply(db, wallet.ID, models.TransactionTypeDeposit, 10, Options{})
	assert.ErrorIs(t, err, ErrWalletNotActive)
}

func TestApplyIdempotentReference(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 0)

	first, err := Apply(db, wallet.ID, models.TransactionTypeDeposit, 100000, Options{ReferenceID: "A1"})
	require.NoError(t, err)

	// Replaying the same reference returns the original row, no new credit
	second, err := Apply(db, wallet.ID, models.TransactionTypeDeposit, 100000, Options{ReferenceID: "A1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.BalanceAfter, second.BalanceAfter)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(100000), fresh.Balance)

	var count int64
	db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLedgerChainInvariant(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 0)

	steps := []struct {
		txType models.TransactionType
		amount uint
	}{
		{models.TransactionTypeDeposit, 500000},
		{models.TransactionTypePurchase, 120000},
		{models.TransactionTypeBonus, 50000},
		{models.TransactionTypeWithdrawal, 30000},
		{models.TransactionTypeRefund, 120000},
		{models.TransactionTypePenalty, 20000},
	}
	for _, s := range steps {
		_, err := Apply(db, wallet.ID, s.txType, s.amount, Options{})
		require.NoError(t, err)
	}

	var txns []models.WalletTransaction
	require.NoError(t, db.Where("wallet_id = ?", wallet.ID).Order("id ASC").Find(&txns).Error)
	require.Len(t, txns, len(steps))

	// balance_after of entry N equals balance_after of N-1 moved by N's amount
	var running uint
	for i, txn := range txns {
		assert.Equal(t, running, txn.BalanceBefore, "entry %d", i)
		running = txn.BalanceAfter
	}

	// Reconciliation: credits minus debits equals the current balance,
	// which equals the last entry's balance_after
	var credits, debits uint
	for _, txn := range txns {
		switch txn.TransactionType {
		case models.TransactionTypeDeposit, models.TransactionTypeBonus, models.TransactionTypeRefund:
			credits += txn.Amount
		default:
			debits += txn.Amount
		}
	}

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, credits-debits, fresh.Balance)
	assert.Equal(t, txns[len(txns)-1].BalanceAfter, fresh.Balance)
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	wallet := createWallet(t, db, 0)

	for _, amount := range []uint{100000, 250000} {
		_, err := Apply(db, wallet.ID, models.TransactionTypeDeposit, amount, Options{})
		require.NoError(t, err)
	}
	_, err := Apply(db, wallet.ID, models.TransactionTypeWithdrawal, 50000, Options{})
	require.NoError(t, err)

	stats, err := GetStats(db, wallet.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, uint(300000), stats.Balance)
	assert.Equal(t, int64(2), stats.Deposits.Count)
	assert.Equal(t, uint(350000), stats.Deposits.Sum)
	assert.Equal(t, int64(1), stats.Withdrawals.Count)
	assert.Equal(t, uint(50000), stats.Withdrawals.Sum)
	assert.Len(t, stats.RecentTransactions, 2)
}
