package walletController

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"irac/database"
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

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Wallet{}, &models.WalletTransaction{}))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	app.Get("/admin/wallet/user/:user_id/balance", GetUserBalance)

	t.Cleanup(func() {
		for _, table := range []string{"wallet_transactions", "wallets", "users"} {
			db.Exec(`DELETE FROM "` + table + `"`)
		}
	})

	return app, db
}

// The user id comes from the path, as the route declares it
func TestGetUserBalanceByPathParam(t *testing.T) {
	app, db := setupTestApp(t)

	user := models.User{Name: "Sara", Email: "sara@test.local", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	wallet := models.Wallet{UserID: user.ID, Balance: 750000, Status: models.WalletStatusActive}
	require.NoError(t, db.Create(&wallet).Error)

	req := httptest.NewRequest("GET", fmt.Sprintf("/admin/wallet/user/%d/balance", user.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status bool `json:"status"`
		Data   struct {
			UserID  uint `json:"userId"`
			Balance uint `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Status)
	assert.Equal(t, user.ID, body.Data.UserID)
	assert.Equal(t, uint(750000), body.Data.Balance)
}

func TestGetUserBalanceInvalidID(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/admin/wallet/user/abc/balance", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
