package pricing

// Tier is the discount level a group has reached through its member count
type Tier struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	MinMembers int    `json:"min_members"`
}

// Thresholds are fixed, not runtime-configurable. Ordered highest first so
// ResolveTier can return on the first match.
var tiers = []Tier{
	{Name: "Platinum", Percentage: 25, MinMembers: 21},
	{Name: "Gold", Percentage: 20, MinMembers: 11},
	{Name: "Silver", Percentage: 15, MinMembers: 6},
	{Name: "Bronze", Percentage: 10, MinMembers: 3},
	{Name: "None", Percentage: 0, MinMembers: 0},
}

// ResolveTier maps an active member count to its discount tier. Pure and
// total over non-negative counts.
func ResolveTier(memberCount int) Tier {
	for _, t := range tiers {
		if memberCount >= t.MinMembers {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// NextTier describes the upsell step above the current member count
type NextTier struct {
	Name          string `json:"name"`
	Percentage    int    `json:"percentage"`
	MinMembers    int    `json:"min_members"`
	MembersNeeded int    `json:"members_needed"`
}

// ResolveNextTier returns the lowest tier whose threshold is strictly greater
// than the current count, or nil when the top tier is already reached.
func ResolveNextTier(memberCount int) *NextTier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if tiers[i].MinMembers > memberCount {
			t := tiers[i]
			return &NextTier{
				Name:          t.Name,
				Percentage:    t.Percentage,
				MinMembers:    t.MinMembers,
				MembersNeeded: t.MinMembers - memberCount,
			}
		}
	}
	return nil
}

// FinalPrice applies a percentage discount to a price in the smallest
// currency unit, rounding down.
func FinalPrice(price uint, percentage int) uint {
	if percentage <= 0 {
		return price
	}
	if percentage >= 100 {
		return 0
	}
	return price * uint(100-percentage) / 100
}

// DiscountAmount is the saving FinalPrice leaves on the table
func DiscountAmount(price uint, percentage int) uint {
	return price - FinalPrice(price, percentage)
}
