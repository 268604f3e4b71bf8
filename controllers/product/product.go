package productController

import (
	"errors"
	"time"

	"irac/database"
	"irac/ledger"
	"irac/middleware"
	"irac/models"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListProducts lists active products
func ListProducts(c *fiber.Ctx) error {
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

	query := db.Model(&models.Product{}).Where("status = ? AND is_deleted = false", "ACTIVE")

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch products!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Products fetched successfully!", fiber.Map{
		"products": products,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CreateProduct creates a product (Admin only)
func CreateProduct(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateProduct").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       uint   `json:"price"`
		Stock       int    `json:"stock"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	product := models.Product{
		Name:        reqData.Name,
		Description: reqData.Description,
		Price:       reqData.Price,
		Stock:       reqData.Stock,
		Status:      "ACTIVE",
	}
	if err := database.Database.Db.Create(&product).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create product!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Product created successfully!", product)
}

// PurchaseProduct buys a product from wallet balance
func PurchaseProduct(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedPurchase").(*struct {
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quantity := reqData.Quantity
	if quantity < 1 {
		quantity = 1
	}

	db := database.Database.Db

	var product models.Product
	if err := db.Where("id = ? AND status = ? AND is_deleted = false", reqData.ProductID, "ACTIVE").First(&product).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Product not found!", nil)
	}

	// Claim stock with a conditional update so a racing purchase cannot
	// oversell the last unit
	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to purchase product!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Not enough stock!", nil)
	}

	restock := func() {
		db.Model(&models.Product{}).Where("id = ?", product.ID).
			UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	}

	var wallet models.Wallet
	if err := db.Where("user_id = ? AND is_deleted = false", userId).First(&wallet).Error; err != nil {
		restock()
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Wallet not found!", nil)
	}

	amount := product.Price * uint(quantity)
	orderCode := utils.GenerateReference("ORD")

	txn, err := ledger.Apply(db, wallet.ID, models.TransactionTypePurchase, amount, ledger.Options{
		ReferenceID:   orderCode,
		ReferenceType: "product",
		ReferenceName: product.Name,
		Description:   "Product purchase: " + product.Name,
	})
	if err != nil {
		restock()
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient wallet balance!", fiber.Map{"code": "INSUFFICIENT_BALANCE"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process payment!", nil)
	}

	order := models.Order{
		UserID:    userId,
		ProductID: product.ID,
		OrderCode: orderCode,
		Quantity:  quantity,
		Amount:    amount,
		Status:    "PAID",
		OrderedAt: time.Now(),
	}
	if err := db.Create(&order).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record order!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase successful!", fiber.Map{
		"order":        order,
		"balanceAfter": txn.BalanceAfter,
	})
}

// GetMyOrders lists the user's orders
func GetMyOrders(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var orders []models.Order
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = false", userId).
		Preload("Product").Order("ordered_at desc").Find(&orders).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch orders!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", orders)
}
