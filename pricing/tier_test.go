package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTierThresholds(t *testing.T) {
	cases := []struct {
		count      int
		percentage int
		name       string
	}{
		{0, 0, "None"},
		{1, 0, "None"},
		{2, 0, "None"},
		{3, 10, "Bronze"},
		{5, 10, "Bronze"},
		{6, 15, "Silver"},
		{10, 15, "Silver"},
		{11, 20, "Gold"},
		{12, 20, "Gold"},
		{20, 20, "Gold"},
		{21, 25, "Platinum"},
		{100, 25, "Platinum"},
	}

	for _, tc := range cases {
		tier := ResolveTier(tc.count)
		assert.Equal(t, tc.percentage, tier.Percentage, "count %d", tc.count)
		assert.Equal(t, tc.name, tier.Name, "count %d", tc.count)
	}
}

func TestResolveTierMonotonic(t *testing.T) {
	allowed := map[int]bool{0: true, 10: true, 15: true, 20: true, 25: true}

	prev := 0
	for c := 0; c <= 200; c++ {
		tier := ResolveTier(c)
		assert.True(t, allowed[tier.Percentage], "unexpected percentage %d at count %d", tier.Percentage, c)
		assert.GreaterOrEqual(t, tier.Percentage, prev, "percentage dropped at count %d", c)
		prev = tier.Percentage
	}
}

func TestResolveNextTier(t *testing.T) {
	next := ResolveNextTier(0)
	assert.NotNil(t, next)
	assert.Equal(t, "Bronze", next.Name)
	assert.Equal(t, 3, next.MembersNeeded)

	next = ResolveNextTier(12)
	assert.NotNil(t, next)
	assert.Equal(t, "Platinum", next.Name)
	assert.Equal(t, 25, next.Percentage)
	assert.Equal(t, 9, next.MembersNeeded)

	// Top tier reached, nothing to upsell
	assert.Nil(t, ResolveNextTier(21))
	assert.Nil(t, ResolveNextTier(500))
}

func TestFinalPrice(t *testing.T) {
	// 12 active members resolve to Gold / 20%
	tier := ResolveTier(12)
	assert.Equal(t, uint(800000), FinalPrice(1000000, tier.Percentage))

	// Rounds down to the nearest integer unit
	assert.Equal(t, uint(850), FinalPrice(1001, 15))
	assert.Equal(t, uint(1001), FinalPrice(1001, 0))
	assert.Equal(t, uint(0), FinalPrice(1000, 100))

	assert.Equal(t, uint(200000), DiscountAmount(1000000, 20))
}
