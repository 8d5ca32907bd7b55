package valueobjects

// Tier is the subscription plan level controlling the API request allowance.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// UnlimitedRequests marks an API request limit with no ceiling.
const UnlimitedRequests = -1

// ValidTiers is the closed set of plan tiers.
var ValidTiers = map[Tier]bool{
	TierFree:       true,
	TierStarter:    true,
	TierPro:        true,
	TierEnterprise: true,
}

// tierRequestLimits maps each tier to its monthly API request allowance.
var tierRequestLimits = map[Tier]int{
	TierFree:       1000,
	TierStarter:    10000,
	TierPro:        100000,
	TierEnterprise: UnlimitedRequests,
}

func (t Tier) String() string {
	return string(t)
}

// IsValid checks if the tier belongs to the known set.
func (t Tier) IsValid() bool {
	return ValidTiers[t]
}

// APIRequestLimit returns the monthly API request allowance for the tier.
// Unknown tiers get the free allowance.
func (t Tier) APIRequestLimit() int {
	if limit, ok := tierRequestLimits[t]; ok {
		return limit
	}
	return tierRequestLimits[TierFree]
}

// IsPaid reports whether the tier is a paying plan.
func (t Tier) IsPaid() bool {
	return t == TierStarter || t == TierPro || t == TierEnterprise
}
