package user_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"chat-server/internal/domain/user"
	"chat-server/internal/utils/platformerrors"
)

// memoryRepo is an in-memory user.Repository.
type memoryRepo struct {
	accounts map[string]*user.Account
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[string]*user.Account)}
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*user.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "account not found: "+id, nil)
	}
	copied := *account
	return &copied, nil
}

func (r *memoryRepo) Save(ctx context.Context, account *user.Account) error {
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func newTestService() (*user.Service, *memoryRepo) {
	repo := newMemoryRepo()
	return user.NewService(repo, zerolog.Nop()), repo
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
	}{
		{name: "empty", content: "", want: 0},
		{name: "single char rounds up", content: "a", want: 1},
		{name: "four chars", content: "abcd", want: 1},
		{name: "five chars", content: "abcde", want: 2},
		{name: "forty chars", content: "0123456789012345678901234567890123456789", want: 10},
		{name: "multibyte runes counted once", content: "жжжж", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := user.EstimateTokens(tt.content); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestGetOrCreateCreatesFreeAccount(t *testing.T) {
	svc, repo := newTestService()

	account, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Plan != user.PlanFree {
		t.Errorf("plan = %s, want free", account.Plan)
	}
	if account.TokensLimit != user.FreeTokenLimit {
		t.Errorf("limit = %d, want %d", account.TokensLimit, user.FreeTokenLimit)
	}
	if len(repo.accounts) != 1 {
		t.Errorf("expected one persisted account, got %d", len(repo.accounts))
	}

	// Second call returns the stored account instead of recreating it.
	again, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.CreatedAt.Equal(account.CreatedAt) {
		t.Error("account should not have been recreated")
	}
}

func TestCheckLimit(t *testing.T) {
	tests := []struct {
		name       string
		used       int64
		spend      int64
		wantDenied bool
	}{
		{name: "well under limit", used: 0, spend: 100, wantDenied: false},
		{name: "exactly reaching limit", used: 900, spend: 100, wantDenied: false},
		{name: "one token over", used: 900, spend: 101, wantDenied: true},
		{name: "already exhausted", used: 1000, spend: 1, wantDenied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			account := user.NewAccount("user-1")
			account.TokensUsed = tt.used
			repo.accounts["user-1"] = account

			err := svc.CheckLimit(context.Background(), "user-1", tt.spend)
			if tt.wantDenied {
				if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
					t.Fatalf("expected forbidden error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckLimitSkipsEmptyID(t *testing.T) {
	svc, repo := newTestService()
	if err := svc.CheckLimit(context.Background(), "", 1_000_000); err != nil {
		t.Fatalf("empty id should be exempt, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Error("no account should have been created")
	}
}

func TestRecordUsage(t *testing.T) {
	svc, repo := newTestService()

	if err := svc.RecordUsage(context.Background(), "user-1", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RecordUsage(context.Background(), "user-1", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account := repo.accounts["user-1"]
	if account.TokensUsed != 50 {
		t.Errorf("tokens used = %d, want 50", account.TokensUsed)
	}
}

func TestRecordUsageIgnoresNonPositiveTokens(t *testing.T) {
	svc, repo := newTestService()

	if err := svc.RecordUsage(context.Background(), "user-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RecordUsage(context.Background(), "user-1", -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Error("zero usage should not create an account")
	}
}

func TestUpgrade(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Upgrade(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Plan != user.PlanPremium {
		t.Errorf("plan = %s, want premium", account.Plan)
	}
	if account.TokensLimit != user.PremiumTokenLimit {
		t.Errorf("limit = %d, want %d", account.TokensLimit, user.PremiumTokenLimit)
	}
}

func TestRemainingTokensNeverNegative(t *testing.T) {
	account := user.NewAccount("user-1")
	account.TokensUsed = account.TokensLimit + 500
	if got := account.RemainingTokens(); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestEstimatedCost(t *testing.T) {
	account := user.NewAccount("user-1")
	account.TokensUsed = 500

	want := decimal.NewFromFloat(0.001)
	if got := account.EstimatedCost(); !got.Equal(want) {
		t.Errorf("cost = %s, want %s", got, want)
	}
}
