package ledger

import (
	"errors"
	"time"

	"irac/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletNotActive     = errors.New("wallet is not active")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrConcurrentUpdate    = errors.New("wallet balance changed concurrently, retries exhausted")
	ErrUnknownTransaction  = errors.New("unknown transaction type")
)

// casRetries bounds the compare-and-swap loop on the wallet balance
const casRetries = 3

// Options carries the optional fields of a ledger entry
type Options struct {
	ReferenceID   string // idempotency key; empty means none
	ReferenceType string
	ReferenceName string
	Description   string
	AdminID       uint
	Reason        string
}

// debit reports whether a transaction type moves money out of the wallet
func debit(t models.TransactionType) (bool, error) {
	switch t {
	case models.TransactionTypeDeposit, models.TransactionTypeRefund, models.TransactionTypeBonus:
		return false, nil
	case models.TransactionTypeWithdrawal, models.TransactionTypePurchase, models.TransactionTypePenalty:
		return true, nil
	default:
		return false, ErrUnknownTransaction
	}
}

// Apply appends one completed transaction to the wallet's ledger and moves the
// balance in the same database transaction. The balance write is a
// compare-and-swap keyed by the balance we read, retried a bounded number of
// times, so two concurrent applies cannot both land on the same snapshot.
//
// When opts.ReferenceID is set and a terminal transaction with that reference
// already exists for the wallet, the existing row is returned and nothing is
// written (idempotent replays of gateway callbacks).
func Apply(db *gorm.DB, walletID uint, txType models.TransactionType, amount uint, opts Options) (*models.WalletTransaction, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	isDebit, err := debit(txType)
	if err != nil {
		return nil, err
	}

	if opts.ReferenceID != "" {
		var existing models.WalletTransaction
		err := db.Where("wallet_id = ? AND reference_id = ? AND status IN ? AND is_deleted = false",
			walletID, opts.ReferenceID,
			[]models.TransactionStatus{models.TransactionStatusCompleted, models.TransactionStatusFailed, models.TransactionStatusCancelled}).
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var txn *models.WalletTransaction
	for attempt := 0; attempt < casRetries; attempt++ {
		var wallet models.Wallet
		if err := db.Where("id = ? AND is_deleted = false", walletID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWalletNotFound
			}
			return nil, err
		}
		if wallet.Status != models.WalletStatusActive {
			return nil, ErrWalletNotActive
		}

		balanceBefore := wallet.Balance
		var balanceAfter uint
		if isDebit {
			if amount > balanceBefore {
				return nil, ErrInsufficientBalance
			}
			balanceAfter = balanceBefore - amount
		} else {
			balanceAfter = balanceBefore + amount
		}

		entry := models.WalletTransaction{
			WalletID:        walletID,
			TransactionType: txType,
			Amount:          amount,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    balanceAfter,
			Status:          models.TransactionStatusCompleted,
			Description:     opts.Description,
			ReferenceType:   opts.ReferenceType,
			ReferenceName:   opts.ReferenceName,
			AdminID:         opts.AdminID,
			Reason:          opts.Reason,
			TransactionDate: time.Now(),
		}
		if opts.ReferenceID != "" {
			ref := opts.ReferenceID
			entry.ReferenceID = &ref
		}

		swapped := false
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Wallet{}).
				Where("id = ? AND balance = ?", walletID, balanceBefore).
				Update("balance", balanceAfter)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost the race; roll back and re-read the balance
				return nil
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			swapped = true
			return nil
		})
		if err != nil {
			return nil, err
		}
		if swapped {
			txn = &entry
			break
		}
	}
	if txn == nil {
		return nil, ErrConcurrentUpdate
	}
	return txn, nil
}

// TypeTotals aggregates one transaction type over a window
type TypeTotals struct {
	Count int64 `json:"count"`
	Sum   uint  `json:"sum"`
}

// Stats is the read-only aggregate view of a wallet's ledger
type Stats struct {
	Balance            uint                       `json:"balance"`
	Deposits           TypeTotals                 `json:"deposits"`
	Withdrawals        TypeTotals                 `json:"withdrawals"`
	MonthDeposits      TypeTotals                 `json:"month_deposits"`
	MonthWithdrawals   TypeTotals                 `json:"month_withdrawals"`
	RecentTransactions []models.WalletTransaction `json:"recent_transactions"`
}

func sumType(db *gorm.DB, walletID uint, txType models.TransactionType, since *time.Time) (TypeTotals, error) {
	var out struct {
		Count int64
		Sum   *uint
	}
	q := db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND transaction_type = ? AND status = ? AND is_deleted = false",
			walletID, txType, models.TransactionStatusCompleted)
	if since != nil {
		q = q.Where("transaction_date >= ?", *since)
	}
	if err := q.Select("COUNT(*) as count, SUM(amount) as sum").Scan(&out).Error; err != nil {
		return TypeTotals{}, err
	}
	totals := TypeTotals{Count: out.Count}
	if out.Sum != nil {
		totals.Sum = *out.Sum
	}
	return totals, nil
}

// GetStats aggregates deposit/withdrawal totals for a wallet, the running
// totals for the current calendar month, and the most recent N transactions.
// Pure read, no mutation.
func GetStats(db *gorm.DB, walletID uint, recentN int) (*Stats, error) {
	var wallet models.Wallet
	if err := db.Where("id = ? AND is_deleted = false", walletID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	stats := &Stats{Balance: wallet.Balance}
	monthStart := now.BeginningOfMonth()

	var err error
	if stats.Deposits, err = sumType(db, walletID, models.TransactionTypeDeposit, nil); err != nil {
		return nil, err
	}
	if stats.Withdrawals, err = sumType(db, walletID, models.TransactionTypeWithdrawal, nil); err != nil {
		return nil, err
	}
	if stats.MonthDeposits, err = sumType(db, walletID, models.TransactionTypeDeposit, &monthStart); err != nil {
		return nil, err
	}
	if stats.MonthWithdrawals, err = sumType(db, walletID, models.TransactionTypeWithdrawal, &monthStart); err != nil {
		return nil, err
	}

	if recentN <= 0 {
		recentN = 10
	}
	if err := db.Where("wallet_id = ? AND is_deleted = false", walletID).
		Order("transaction_date DESC").
		Limit(recentN).
		Find(&stats.RecentTransactions).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
