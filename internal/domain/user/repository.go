package user

import "context"

// Repository persists user accounts.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}
