package filestore_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/user"
	"chat-server/internal/infrastructure/filestore"
	"chat-server/internal/utils/platformerrors"
)

func TestUserStoreSaveAndFind(t *testing.T) {
	store, err := filestore.NewUserStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	account := user.NewAccount("user-1")
	account.TokensUsed = 42
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.TokensUsed != 42 || found.Plan != user.PlanFree {
		t.Errorf("round trip mismatch: %+v", found)
	}
}

func TestUserStoreFindUnknownReturnsNotFound(t *testing.T) {
	store, err := filestore.NewUserStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	_, err = store.FindByID(context.Background(), "user-missing")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUserStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := filestore.NewUserStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	account := user.NewAccount("user-1")
	account.Plan = user.PlanPremium
	account.TokensLimit = user.PremiumTokenLimit
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := filestore.NewUserStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	found, err := reopened.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Plan != user.PlanPremium || found.TokensLimit != user.PremiumTokenLimit {
		t.Errorf("persisted account mismatch: %+v", found)
	}
}

func TestUserStoreSaveUpserts(t *testing.T) {
	store, err := filestore.NewUserStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	account := user.NewAccount("user-1")
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	account.TokensUsed = 7
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.TokensUsed != 7 {
		t.Errorf("tokens used = %d, want 7", found.TokensUsed)
	}
}
