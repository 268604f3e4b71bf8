package walletController

import (
	"errors"
	"log"

	"irac/database"
	"irac/ledger"
	"irac/middleware"
	"irac/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// walletForUser fetches the user's wallet, creating it lazily for accounts
// that predate the wallet table.
func walletForUser(db *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Where("user_id = ? AND is_deleted = false", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.Wallet{UserID: userID, Status: models.WalletStatusActive}
		if err := db.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ledgerErrorResponse maps ledger errors onto the API response shape
func ledgerErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient balance!", fiber.Map{"code": "INSUFFICIENT_BALANCE"})
	case errors.Is(err, ledger.ErrWalletNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Wallet not found!", nil)
	case errors.Is(err, ledger.ErrWalletNotActive):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Wallet is not active!", nil)
	case errors.Is(err, ledger.ErrInvalidAmount):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount must be greater than 0!", nil)
	default:
		log.Printf("[WALLET] Ledger operation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process transaction!", nil)
	}
}

// GetWalletBalance returns user's current wallet balance
func GetWalletBalance(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	wallet, err := walletForUser(database.Database.Db, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance fetched!", fiber.Map{
		"walletId": wallet.ID,
		"balance":  wallet.Balance,
		"currency": wallet.Currency,
	})
}

// Withdraw debits the user's wallet through the ledger
func Withdraw(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedWithdraw").(*struct {
		Amount      uint   `json:"amount"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	wallet, err := walletForUser(db, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	txn, err := ledger.Apply(db, wallet.ID, models.TransactionTypeWithdrawal, reqData.Amount, ledger.Options{
		Description: reqData.Description,
	})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal successful!", fiber.Map{
		"transactionId": txn.ID,
		"amount":        txn.Amount,
		"balanceBefore": txn.BalanceBefore,
		"balanceAfter":  txn.BalanceAfter,
		"status":        txn.Status,
	})
}

// GetWalletHistory returns user's wallet transaction history
func GetWalletHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	txnType := c.Query("type") // DEPOSIT, PURCHASE, etc.

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit
	db := database.Database.Db

	wallet, err := walletForUser(db, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	query := db.Model(&models.WalletTransaction{}).Where("wallet_id = ? AND is_deleted = false", wallet.ID)

	if txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.WalletTransaction
	if err := query.
		Order("transaction_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet history fetched!", fiber.Map{
		"transactions":   transactions,
		"currentBalance": wallet.Balance,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetWalletStats returns aggregate totals and the latest transactions
func GetWalletStats(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	db := database.Database.Db

	wallet, err := walletForUser(db, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	recentN := c.QueryInt("recent", 10)
	stats, err := ledger.GetStats(db, wallet.ID, recentN)
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet stats fetched!", stats)
}

// AddBalance credits a user's wallet as a bonus (Admin only)
func AddBalance(c *fiber.Ctx) error {
	adminId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAddBalance").(*struct {
		UserID uint   `json:"userId"`
		Amount uint   `json:"amount"`
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	wallet, err := walletForUser(db, reqData.UserID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	txn, err := ledger.Apply(db, wallet.ID, models.TransactionTypeBonus, reqData.Amount, ledger.Options{
		Description: "Admin credit: " + reqData.Reason,
		AdminID:     adminId,
		Reason:      reqData.Reason,
	})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance added successfully!", fiber.Map{
		"transactionId":   txn.ID,
		"userId":          reqData.UserID,
		"previousBalance": txn.BalanceBefore,
		"amountAdded":     txn.Amount,
		"newBalance":      txn.BalanceAfter,
		"reason":          reqData.Reason,
	})
}

// DeductBalance debits a user's wallet as a penalty (Admin only)
func DeductBalance(c *fiber.Ctx) error {
	adminId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedDeductBalance").(*struct {
		UserID uint   `json:"userId"`
		Amount uint   `json:"amount"`
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	wallet, err := walletForUser(db, reqData.UserID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	txn, err := ledger.Apply(db, wallet.ID, models.TransactionTypePenalty, reqData.Amount, ledger.Options{
		Description: "Admin debit: " + reqData.Reason,
		AdminID:     adminId,
		Reason:      reqData.Reason,
	})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance deducted successfully!", fiber.Map{
		"transactionId":   txn.ID,
		"userId":          reqData.UserID,
		"previousBalance": txn.BalanceBefore,
		"amountDeducted":  txn.Amount,
		"newBalance":      txn.BalanceAfter,
		"reason":          reqData.Reason,
	})
}

// GetUserBalance returns a specific user's balance (Admin only)
func GetUserBalance(c *fiber.Ctx) error {
	targetUserId, err := c.ParamsInt("user_id")
	if err != nil || targetUserId <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	db := database.Database.Db

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", targetUserId).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	wallet, err := walletForUser(db, uint(targetUserId))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wallet!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User balance fetched!", fiber.Map{
		"userId":   targetUser.ID,
		"name":     targetUser.Name,
		"email":    targetUser.Email,
		"balance":  wallet.Balance,
		"currency": wallet.Currency,
	})
}

// GetAllTransactions lists ledger entries across all wallets (Admin only)
func GetAllTransactions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	txnType := c.Query("type")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	offset := (page - 1) * limit
	db := database.Database.Db

	query := db.Model(&models.WalletTransaction{}).Where("is_deleted = false")
	if txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.WalletTransaction
	if err := query.
		Order("transaction_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch transactions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched!", fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
