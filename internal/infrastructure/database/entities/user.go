package entities

import (
	"time"

	domain "chat-server/internal/domain/user"
)

// UserAccount is the database schema for plan and token accounting.
type UserAccount struct {
	ID             string `gorm:"primaryKey;size:128"`
	Plan           string `gorm:"size:16"`
	TokensUsed     int64
	TokensLimit    int64
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSchemaUserAccount converts a domain account to its entity.
func NewSchemaUserAccount(account *domain.Account) *UserAccount {
	return &UserAccount{
		ID:             account.ID,
		Plan:           string(account.Plan),
		TokensUsed:     account.TokensUsed,
		TokensLimit:    account.TokensLimit,
		LastActivityAt: account.LastActivityAt,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
}

// EtoD converts the entity back to the domain account.
func (e *UserAccount) EtoD() *domain.Account {
	return &domain.Account{
		ID:             e.ID,
		Plan:           domain.Plan(e.Plan),
		TokensUsed:     e.TokensUsed,
		TokensLimit:    e.TokensLimit,
		LastActivityAt: e.LastActivityAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
