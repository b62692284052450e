// Package models defines the domain types shared across the API surface.
package models

type Tier string

const (
	TierNone      Tier = "none"
	TierBasic     Tier = "basic"
	TierStandard  Tier = "standard"
	TierUnlimited Tier = "unlimited"
)

// UnlimitedQuota marks a tier field that has no daily cap.
const UnlimitedQuota = -1

// TierLimits caps how many full analyses and follow-up questions a tier
// may consume per UTC day.
type TierLimits struct {
	Analyses  int
	Questions int
}

// DefaultTierLimits is the shipped tier table. The analyzer takes its own
// copy so tests can run arbitrary tier/limit combinations.
var DefaultTierLimits = map[Tier]TierLimits{
	TierNone:      {Analyses: 0, Questions: 0},
	TierBasic:     {Analyses: 3, Questions: 15},
	TierStandard:  {Analyses: 10, Questions: 50},
	TierUnlimited: {Analyses: UnlimitedQuota, Questions: UnlimitedQuota},
}

type User struct {
	ID               string
	Email            string
	Tier             Tier
	StripeCustomerID string
}

// Usage is one user's consumption for a single UTC day.
type Usage struct {
	Analyses  int
	Questions int
}
