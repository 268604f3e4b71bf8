package paymentController

import (
	"errors"
	"log"
	"time"

	"irac/config"
	"irac/database"
	"irac/gateway"
	"irac/ledger"
	"irac/middleware"
	"irac/models"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Gateway is the payment gateway client used by the handlers. main wires the
// real ZarinPal client; tests may swap in one pointed at a stub server.
var Gateway *gateway.Client

// InitGateway builds the gateway client from configuration
func InitGateway() {
	cfg := config.AppConfig
	Gateway = gateway.NewClient(cfg.GatewayMerchantID, cfg.GatewayRequestURL, cfg.GatewayVerifyURL, cfg.GatewayStartPay)
}

// RequestDeposit opens a payment attempt with the gateway and records the
// authority it hands back
func RequestDeposit(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedDepositRequest").(*struct {
		Amount      uint   `json:"amount"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cfg := config.AppConfig
	if reqData.Amount < cfg.MinDepositAmount {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount is below the minimum deposit!", fiber.Map{
			"minimum": cfg.MinDepositAmount,
		})
	}
	if reqData.Amount > cfg.MaxDepositAmount {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount exceeds the maximum deposit!", fiber.Map{
			"maximum": cfg.MaxDepositAmount,
		})
	}

	db := database.Database.Db

	var wallet models.Wallet
	if err := db.Where("user_id = ? AND is_deleted = false", userId).First(&wallet).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Wallet not found!", nil)
	}
	if wallet.Status != models.WalletStatusActive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Wallet is not active!", nil)
	}

	description := reqData.Description
	if description == "" {
		description = "Wallet deposit"
	}

	authority, paymentURL, err := Gateway.CreatePayment(reqData.Amount, description, cfg.PaymentCallback)
	if err != nil {
		log.Printf("[PAYMENT] Create payment failed for user %d: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment gateway is unavailable, please try again!", fiber.Map{
			"code": "GATEWAY_ERROR",
		})
	}

	record := models.PaymentAuthority{
		Authority:   authority,
		WalletID:    wallet.ID,
		UserID:      userId,
		Amount:      reqData.Amount,
		Description: description,
		Status:      models.PaymentStatusPending,
		PaymentURL:  paymentURL,
	}
	if err := db.Create(&record).Error; err != nil {
		log.Printf("[PAYMENT] Failed to persist authority %s: %v", authority, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment created!", fiber.Map{
		"authority":   authority,
		"payment_url": paymentURL,
		"amount":      reqData.Amount,
	})
}

// VerifyCallback is the endpoint the gateway redirects the user back to with
// Authority and Status (OK|NOK) query parameters. Crediting is guarded by an
// atomic claim of the authority record, so a replayed callback returns the
// recorded result instead of crediting twice.
func VerifyCallback(c *fiber.Ctx) error {
	authority := c.Query("Authority")
	status := c.Query("Status")

	if authority == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Authority is required!", nil)
	}

	db := database.Database.Db

	var record models.PaymentAuthority
	if err := db.Where("authority = ? AND is_deleted = false", authority).First(&record).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown payment authority!", nil)
	}

	// User cancelled at the gateway: a normal terminal state, not an error
	if status == "NOK" {
		if !record.Consumed && record.Status == models.PaymentStatusPending {
			db.Model(&record).Updates(map[string]interface{}{"status": models.PaymentStatusCancelled})
		}
		return middleware.JsonResponse(c, fiber.StatusOK, false, "Payment was cancelled.", fiber.Map{
			"code":      "PAYMENT_CANCELLED",
			"authority": authority,
		})
	}

	if record.Status == models.PaymentStatusCancelled || record.Status == models.PaymentStatusExpired {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment is no longer verifiable!", fiber.Map{
			"code":   "PAYMENT_CANCELLED",
			"status": record.Status,
		})
	}

	// Already consumed: idempotent replay with the recorded result
	if record.Consumed {
		return replayVerified(c, &record)
	}

	result, err := Gateway.VerifyPayment(authority, record.Amount)
	if err != nil {
		// The authority stays unconsumed so a retry can still succeed
		code := "VERIFICATION_ERROR"
		if errors.Is(err, gateway.ErrGatewayUnreachable) {
			code = "GATEWAY_ERROR"
		}
		log.Printf("[PAYMENT] Verify failed for authority %s: %v", authority, err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment verification failed, please try again!", fiber.Map{
			"code":      code,
			"authority": authority,
		})
	}

	// Claim and credit move together in one transaction. The conditional
	// update means only one callback can flip consumed from false to true,
	// and a failed credit rolls the claim back so a later callback can
	// still collect the deposit.
	var txn *models.WalletTransaction
	lostRace := false
	txErr := db.Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.PaymentAuthority{}).
			Where("authority = ? AND consumed = false", authority).
			Updates(map[string]interface{}{
				"consumed":    true,
				"status":      models.PaymentStatusVerified,
				"ref_id":      result.RefID,
				"card_pan":    result.CardPan,
				"verified_at": time.Now(),
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			lostRace = true
			return nil
		}
		entry, err := ledger.Apply(tx, record.WalletID, models.TransactionTypeDeposit, record.Amount, ledger.Options{
			ReferenceID:   authority,
			ReferenceType: "payment_gateway",
			ReferenceName: "ZarinPal",
			Description:   record.Description,
		})
		if err != nil {
			return err
		}
		txn = entry
		return nil
	})
	if txErr != nil {
		// The authority stays unconsumed; the user can hit the callback again
		log.Printf("[PAYMENT] Credit failed for authority %s, claim rolled back: %v", authority, txErr)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to credit wallet, please try again!", fiber.Map{
			"authority": authority,
		})
	}
	if lostRace {
		// Lost the race against a concurrent callback; replay its result
		if err := db.Where("authority = ?", authority).First(&record).Error; err == nil {
			return replayVerified(c, &record)
		}
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already processed!", nil)
	}

	// Receipt mail is best-effort
	go func(userID uint, amount, balance uint, refID string) {
		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
			return
		}
		utils.SendDepositReceiptEmail(user.Email, user.Name, amount, balance, refID)
	}(record.UserID, record.Amount, txn.BalanceAfter, result.RefID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified!", fiber.Map{
		"authority":   authority,
		"ref_id":      result.RefID,
		"card_pan":    result.CardPan,
		"amount":      record.Amount,
		"new_balance": txn.BalanceAfter,
	})
}

// replayVerified answers a duplicate callback for an already-consumed
// authority with the original ref_id and the balance the credit produced
func replayVerified(c *fiber.Ctx, record *models.PaymentAuthority) error {
	db := database.Database.Db

	var txn models.WalletTransaction
	newBalance := uint(0)
	if err := db.Where("wallet_id = ? AND reference_id = ? AND is_deleted = false",
		record.WalletID, record.Authority).First(&txn).Error; err == nil {
		newBalance = txn.BalanceAfter
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already verified!", fiber.Map{
		"authority":   record.Authority,
		"ref_id":      record.RefID,
		"card_pan":    record.CardPan,
		"amount":      record.Amount,
		"new_balance": newBalance,
	})
}

// GetMyPayments lists the user's payment attempts
func GetMyPayments(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	query := db.Model(&models.PaymentAuthority{}).Where("user_id = ? AND is_deleted = false", userId)

	var total int64
	query.Count(&total)

	var payments []models.PaymentAuthority
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched!", fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
