package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan identifies a usage tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

const (
	// FreeTokenLimit is the monthly token allowance on the free plan.
	FreeTokenLimit = 1000
	// PremiumTokenLimit is the allowance granted on upgrade.
	PremiumTokenLimit = 100000
)

// costPerThousandTokens is the blended USD rate used for the estimated
// cost figure on the profile endpoint.
var costPerThousandTokens = decimal.NewFromFloat(0.002)

// Account tracks a chat user's plan and token consumption.
type Account struct {
	ID             string    `json:"id"`
	Plan           Plan      `json:"plan"`
	TokensUsed     int64     `json:"tokensUsed"`
	TokensLimit    int64     `json:"tokensLimit"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewAccount creates a free-plan account for the given id.
func NewAccount(id string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:             id,
		Plan:           PlanFree,
		TokensUsed:     0,
		TokensLimit:    FreeTokenLimit,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RemainingTokens returns how many tokens the account may still spend.
func (a *Account) RemainingTokens() int64 {
	remaining := a.TokensLimit - a.TokensUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EstimatedCost converts consumed tokens into an approximate USD figure.
func (a *Account) EstimatedCost() decimal.Decimal {
	tokens := decimal.NewFromInt(a.TokensUsed)
	return tokens.Div(decimal.NewFromInt(1000)).Mul(costPerThousandTokens).Round(6)
}

// EstimateTokens approximates the token count of a text as one token per
// four characters, rounded up.
func EstimateTokens(content string) int64 {
	runes := len([]rune(content))
	if runes == 0 {
		return 0
	}
	return int64((runes + 3) / 4)
}
