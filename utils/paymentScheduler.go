package utils

import (
	"log"
	"time"

	"irac/database"
	"irac/models"

	"github.com/robfig/cron/v3"
)

// pendingPaymentTTL is how long a gateway authority stays verifiable
const pendingPaymentTTL = 30 * time.Minute

// InitializePaymentScheduler sets up the payment expiry scheduler
func InitializePaymentScheduler() {
	log.Println("[PAYMENT-SCHEDULER] Initializing payment scheduler...")

	c := cron.New()

	// Run every 15 minutes to expire stale pending payments
	c.AddFunc("*/15 * * * *", func() {
		ExpireStalePayments()
	})

	c.Start()
	log.Println("[PAYMENT-SCHEDULER] Payment scheduler started - runs every 15 minutes")
}

// ExpireStalePayments marks pending authorities older than the TTL as
// EXPIRED. Only unconsumed pending records are touched, so a payment that
// verified in the meantime is never clobbered.
func ExpireStalePayments() {
	db := database.Database.Db
	cutoff := time.Now().Add(-pendingPaymentTTL)

	result := db.Model(&models.PaymentAuthority{}).
		Where("status = ? AND consumed = false AND created_at < ?", models.PaymentStatusPending, cutoff).
		Update("status", models.PaymentStatusExpired)

	if result.Error != nil {
		log.Printf("[PAYMENT-SCHEDULER] Error expiring payments: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[PAYMENT-SCHEDULER] Expired %d stale pending payments", result.RowsAffected)
	}
}
