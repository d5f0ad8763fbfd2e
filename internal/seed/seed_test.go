package seed

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/app/catalog"
	appModels "github.com/yigit/nhance/internal/app/models"
	appRepos "github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/nhance/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	pkgAuth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type userStore struct {
	appRepos.IUserRepository
	users    map[string]*appModels.User
	profiles map[int64]*appModels.Profile
}

func newUserStore() *userStore {
	return &userStore{users: map[string]*appModels.User{}, profiles: map[int64]*appModels.Profile{}}
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*appModels.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *userStore) CreateAccount(_ context.Context, user *appModels.User, profile *appModels.Profile) (int64, error) {
	id := int64(len(s.users) + 1)
	user.ID, profile.UserID = id, id
	s.users[user.Email] = user
	s.profiles[id] = profile
	return id, nil
}

func (s *userStore) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	s.profiles[userID].IsAdmin = isAdmin
	return nil
}

func TestEnsureAdmin_CreatesVerifiedAdmin(t *testing.T) {
	store := newUserStore()
	err := EnsureAdmin(context.Background(), store, AdminAccount{
		Email:    " Admin@nhance.edu ",
		Password: "changeme",
		Name:     "Admin",
		Branch:   "cse",
	}, zerolog.Nop())
	require.NoError(t, err)

	user, ok := store.users["admin@nhance.edu"]
	require.True(t, ok)
	assert.True(t, user.EmailVerified)
	assert.True(t, pkgAuth.CheckPassword(user.Password, "changeme"))
	assert.True(t, store.profiles[user.ID].IsAdmin)
	assert.Equal(t, catalog.BranchCSE, store.profiles[user.ID].Branch)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	store := newUserStore()
	_, _ = store.CreateAccount(context.Background(),
		&appModels.User{Email: "admin@nhance.edu"},
		&appModels.Profile{Name: "Someone", Branch: catalog.BranchEEE})

	err := EnsureAdmin(context.Background(), store, AdminAccount{Email: "admin@nhance.edu", Password: "x", Branch: "CSE"}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, store.profiles[1].IsAdmin)
	assert.Len(t, store.users, 1)
}

func TestEnsureAdmin_SkipsWithoutPassword(t *testing.T) {
	store := newUserStore()
	require.NoError(t, EnsureAdmin(context.Background(), store, AdminAccount{Email: "admin@nhance.edu"}, zerolog.Nop()))
	assert.Empty(t, store.users)
}

func TestEnsureAdmin_RejectsUnknownBranch(t *testing.T) {
	store := newUserStore()
	err := EnsureAdmin(context.Background(), store, AdminAccount{Email: "a@nhance.edu", Password: "x", Branch: "Physics"}, zerolog.Nop())
	assert.Error(t, err)
	assert.Empty(t, store.users)
}
