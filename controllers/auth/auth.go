package authController

import (
	"fmt"
	"log"
	"time"

	"irac/config"
	"irac/database"
	"irac/ledger"
	"irac/middleware"
	"irac/models"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*struct {
		Name         string `json:"name" validate:"required,min=2,max=100"`
		Email        string `json:"email" validate:"required,email"`
		Mobile       string `json:"mobile" validate:"omitempty,min=10,max=15"`
		Password     string `json:"password" validate:"required,min=8"`
		ReferralCode string `json:"referralCode" validate:"omitempty,max=50"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Check if mobile already exists
	if reqData.Mobile != "" {
		if err := db.Where("mobile = ?", reqData.Mobile).First(&models.User{}).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Mobile number is already registered!", nil)
		}
	}

	// Resolve the referrer before creating anything, so a bad code is a
	// clean validation failure
	var referrer models.User
	hasReferrer := false
	if reqData.ReferralCode != "" {
		if err := db.Where("referral_code = ? AND is_deleted = false", reqData.ReferralCode).First(&referrer).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid referral code!", nil)
		}
		hasReferrer = true
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:         reqData.Name,
		Email:        reqData.Email,
		Mobile:       reqData.Mobile,
		Password:     string(hashedPassword),
		ReferralCode: utils.GenerateReferralCode(),
	}
	if hasReferrer {
		newUser.ReferredBy = referrer.ID
	}

	tx := db.Begin()
	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	// Every account gets a wallet
	wallet := models.Wallet{UserID: newUser.ID, Status: models.WalletStatusActive}
	if err := tx.Create(&wallet).Error; err != nil {
		tx.Rollback()
		log.Printf("Error creating wallet: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}
	tx.Commit()

	// Referral payout is a best-effort post-commit action; the referral row's
	// code doubles as the ledger reference so a replay cannot pay twice
	if hasReferrer {
		go rewardReferrer(referrer.ID, newUser.ID, reqData.ReferralCode)
	}

	go utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	// Clean Response
	newUser.Password = ""

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

// rewardReferrer credits the referrer's wallet with the configured bonus
func rewardReferrer(referrerID, referredUserID uint, code string) {
	db := database.Database.Db
	bonus := config.AppConfig.ReferralBonus
	if bonus == 0 {
		return
	}

	referral := models.Referral{
		ReferrerID:     referrerID,
		ReferredUserID: referredUserID,
		Code:           code,
		BonusAmount:    bonus,
		RewardedAt:     time.Now(),
	}
	if err := db.Create(&referral).Error; err != nil {
		log.Printf("[REFERRAL] Failed to record referral of user %d: %v", referredUserID, err)
		return
	}

	var wallet models.Wallet
	if err := db.Where("user_id = ? AND is_deleted = false", referrerID).First(&wallet).Error; err != nil {
		log.Printf("[REFERRAL] Referrer %d has no wallet: %v", referrerID, err)
		return
	}

	if _, err := ledger.Apply(db, wallet.ID, models.TransactionTypeBonus, bonus, ledger.Options{
		ReferenceID:   fmt.Sprintf("REF-%d", referredUserID),
		ReferenceType: "referral",
		Description:   "Referral bonus",
	}); err != nil {
		log.Printf("[REFERRAL] Failed to credit referrer %d: %v", referrerID, err)
	}
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = false", reqData.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Account is temporarily blocked. Try again later!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		now := time.Now()
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now
		if user.FailedLoginAttempts >= 5 {
			blockedUntil := now.Add(30 * time.Minute)
			user.IsBlocked = true
			user.BlockedUntil = &blockedUntil
		}
		db.Save(&user)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	user.FailedLoginAttempts = 0
	user.IsBlocked = false
	user.BlockedUntil = nil
	user.LastLogin = time.Now()
	db.Save(&user)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email, user.Mobile)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GetProfile returns the authenticated user's profile with wallet balance
func GetProfile(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	var wallet models.Wallet
	balance := uint(0)
	if err := db.Where("user_id = ? AND is_deleted = false", userId).First(&wallet).Error; err == nil {
		balance = wallet.Balance
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched!", fiber.Map{
		"user":    user,
		"balance": balance,
	})
}
