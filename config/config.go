package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int

	EmailSender string
	Password    string // SMTP Password

	// Payment gateway (ZarinPal-style)
	GatewayMerchantID string
	GatewayRequestURL string
	GatewayVerifyURL  string
	GatewayStartPay   string
	PaymentCallback   string // our callback endpoint the gateway redirects to

	// Deposit bounds in the smallest currency unit (IRR)
	MinDepositAmount uint
	MaxDepositAmount uint

	// Referral bonus credited to the referrer per signed-up user
	ReferralBonus uint
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBName:    getEnv("DB_NAME", "irac"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		GatewayMerchantID: getEnv("GATEWAY_MERCHANT_ID", ""),
		GatewayRequestURL: getEnv("GATEWAY_REQUEST_URL", "https://api.zarinpal.com/pg/v4/payment/request.json"),
		GatewayVerifyURL:  getEnv("GATEWAY_VERIFY_URL", "https://api.zarinpal.com/pg/v4/payment/verify.json"),
		GatewayStartPay:   getEnv("GATEWAY_STARTPAY_URL", "https://www.zarinpal.com/pg/StartPay/"),
		PaymentCallback:   getEnv("PAYMENT_CALLBACK_URL", "http://localhost:3000/payment/verify"),

		MinDepositAmount: uint(getEnvInt("MIN_DEPOSIT_AMOUNT", 10000)),
		MaxDepositAmount: uint(getEnvInt("MAX_DEPOSIT_AMOUNT", 500000000)),

		ReferralBonus: uint(getEnvInt("REFERRAL_BONUS", 100000)),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GatewayMerchantID == "" {
		log.Println("Warning: GATEWAY_MERCHANT_ID is empty. Payment requests will be rejected by the gateway.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
