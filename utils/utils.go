package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferralCode produces a short shareable referral code
func GenerateReferralCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "IRAC-" + id[:8]
}

// GenerateReference produces an idempotency reference for ledger entries,
// prefixed so support can tell what kind of operation produced it
func GenerateReference(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Unix(), id[:10])
}
