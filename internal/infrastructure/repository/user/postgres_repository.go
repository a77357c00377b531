package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/database/entities"
	"chat-server/internal/utils/platformerrors"
)

// Repository is the postgres-backed account store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a user account repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

// FindByID fetches an account by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var entity entities.UserAccount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, fmt.Sprintf("account not found: %s", id), nil)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to fetch account", err)
	}
	return entity.EtoD(), nil
}

// Save upserts the account record.
func (r *Repository) Save(ctx context.Context, account *domain.Account) error {
	entity := entities.NewSchemaUserAccount(account)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to save account", err)
	}
	return nil
}
