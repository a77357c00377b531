package user

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/utils/platformerrors"
)

// Service handles plan and token accounting for chat users.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "user-service").Logger(),
	}
}

// GetOrCreate returns the account for the id, creating a free-plan account
// on first sight.
func (s *Service) GetOrCreate(ctx context.Context, id string) (*Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return account, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load account")
	}

	account = NewAccount(id)
	if err := s.repo.Save(ctx, account); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create account")
	}
	s.log.Info().Str("user_id", id).Msg("created account")
	return account, nil
}

// CheckLimit returns a FORBIDDEN error when spending the estimated tokens
// would push the account past its plan limit. Anonymous users are exempt.
func (s *Service) CheckLimit(ctx context.Context, id string, tokens int64) error {
	if id == "" {
		return nil
	}
	account, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return err
	}
	if account.TokensUsed+tokens > account.TokensLimit {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "token limit exceeded", nil)
	}
	return nil
}

// RecordUsage adds the spent tokens and refreshes activity timestamps.
func (s *Service) RecordUsage(ctx context.Context, id string, tokens int64) error {
	if tokens <= 0 {
		return nil
	}
	account, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	account.TokensUsed += tokens
	account.LastActivityAt = now
	account.UpdatedAt = now

	if err := s.repo.Save(ctx, account); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record usage")
	}
	return nil
}

// Upgrade moves the account onto the premium plan with the premium limit.
func (s *Service) Upgrade(ctx context.Context, id string) (*Account, error) {
	account, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Plan = PlanPremium
	account.TokensLimit = PremiumTokenLimit
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to upgrade account")
	}
	s.log.Info().Str("user_id", id).Msg("account upgraded to premium")
	return account, nil
}
