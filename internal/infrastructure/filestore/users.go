package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/user"
	"chat-server/internal/utils/platformerrors"
)

// UserStore keeps all accounts in one <dataDir>/users.json document guarded
// by a single mutex. Account volume is small enough that whole-file rewrites
// are fine.
type UserStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

// NewUserStore creates the file-backed user repository.
func NewUserStore(dataDir string, log zerolog.Logger) (*UserStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &UserStore{
		path: filepath.Join(dataDir, "users.json"),
		log:  log.With().Str("component", "user-filestore").Logger(),
	}, nil
}

var _ user.Repository = (*UserStore)(nil)

func (s *UserStore) load(ctx context.Context) (map[string]*user.Account, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*user.Account{}, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to read users file", err)
	}

	accounts := map[string]*user.Account{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to decode users file", err)
	}
	return accounts, nil
}

func (s *UserStore) persist(ctx context.Context, accounts map[string]*user.Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to encode users file", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "users.*.tmp")
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create temp file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to write users file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to flush users file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to persist users file", err)
	}
	return nil
}

// FindByID returns the stored account or NotFound.
func (s *UserStore) FindByID(ctx context.Context, id string) (*user.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	account, ok := accounts[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "account not found: "+id, nil)
	}
	copied := *account
	return &copied, nil
}

// Save upserts the account.
func (s *UserStore) Save(ctx context.Context, account *user.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return err
	}
	copied := *account
	accounts[account.ID] = &copied
	return s.persist(ctx, accounts)
}
