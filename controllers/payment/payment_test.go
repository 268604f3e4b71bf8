package paymentController

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"irac/config"
	"irac/database"
	"irac/gateway"
	"irac/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.WalletTransaction{}, &models.PaymentAuthority{},
	))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	app.Get("/payment/verify", VerifyCallback)

	t.Cleanup(func() {
		for _, table := range []string{"payment_authorities", "wallet_transactions", "wallets", "users"} {
			db.Exec(`DELETE FROM "` + table + `"`)
		}
	})

	return app, db
}

// stubGateway answers every verify call with a successful code 100
func stubGateway(t *testing.T, refID int64) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"code":100,"ref_id":%d,"card_pan":"502229******1234"}}`, refID)
	}))
	t.Cleanup(srv.Close)

	Gateway = gateway.NewClient("test-merchant", srv.URL+"/request", srv.URL+"/verify", srv.URL+"/startpay/")
}

func seedPendingPayment(t *testing.T, db *gorm.DB, amount uint, walletStatus models.WalletStatus) (*models.Wallet, *models.PaymentAuthority) {
	t.Helper()

	user := models.User{Email: "payer@test.local", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	wallet := models.Wallet{UserID: user.ID, Status: walletStatus}
	require.NoError(t, db.Create(&wallet).Error)

	record := models.PaymentAuthority{
		Authority: "A0000100",
		WalletID:  wallet.ID,
		UserID:    user.ID,
		Amount:    amount,
		Status:    models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&record).Error)

	return &wallet, &record
}

// A credit that cannot be written must roll the authority claim back, so a
// later callback can still collect the deposit instead of replaying an empty
// result.
func TestVerifyCallbackFailedCreditStaysCollectable(t *testing.T) {
	app, db := setupTestApp(t)
	stubGateway(t, 201)

	wallet, _ := seedPendingPayment(t, db, 100000, models.WalletStatusSuspended)

	req := httptest.NewRequest("GET", "/payment/verify?Authority=A0000100&Status=OK", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// Claim rolled back with the failed credit
	var record models.PaymentAuthority
	require.NoError(t, db.Where("authority = ?", "A0000100").First(&record).Error)
	assert.False(t, record.Consumed)
	assert.Equal(t, models.PaymentStatusPending, record.Status)

	// Wallet back in order, the retry must credit
	require.NoError(t, db.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
		Update("status", models.WalletStatusActive).Error)

	req = httptest.NewRequest("GET", "/payment/verify?Authority=A0000100&Status=OK", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(100000), fresh.Balance)

	var entries int64
	db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND reference_id = ?", wallet.ID, "A0000100").Count(&entries)
	assert.Equal(t, int64(1), entries)
}

// A replayed callback for an already-credited authority answers with the
// recorded result and never credits twice.
func TestVerifyCallbackReplayDoesNotDoubleCredit(t *testing.T) {
	app, db := setupTestApp(t)
	stubGateway(t, 305)

	wallet, _ := seedPendingPayment(t, db, 250000, models.WalletStatusActive)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/payment/verify?Authority=A0000100&Status=OK", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(250000), fresh.Balance)

	var entries int64
	db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID).Count(&entries)
	assert.Equal(t, int64(1), entries)
}

// Status=NOK cancels a pending authority without touching the wallet
func TestVerifyCallbackCancelled(t *testing.T) {
	app, db := setupTestApp(t)
	stubGateway(t, 0)

	wallet, _ := seedPendingPayment(t, db, 100000, models.WalletStatusActive)

	req := httptest.NewRequest("GET", "/payment/verify?Authority=A0000100&Status=NOK", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var record models.PaymentAuthority
	require.NoError(t, db.Where("authority = ?", "A0000100").First(&record).Error)
	assert.Equal(t, models.PaymentStatusCancelled, record.Status)
	assert.False(t, record.Consumed)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(0), fresh.Balance)
}
