// Package seed creates the data a fresh installation needs
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/catalog"
	appModels "github.com/yigit/nhance/internal/app/models"
	appRepos "github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/nhance/internal/pkg/auth"
)

// AdminAccount describes the bootstrap administrator
type AdminAccount struct {
	Email    string
	Password string
	Name     string
	Branch   string
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet and
// makes sure an existing account carries the admin flag. Nothing happens
// without a password.
func EnsureAdmin(ctx context.Context, userRepo appRepos.IUserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	address := strings.ToLower(strings.TrimSpace(admin.Email))
	if address == "" || admin.Password == "" {
		lgr.Info().Msg("No seed admin password configured, skipping admin seed")
		return nil
	}

	existing, err := userRepo.GetByEmail(ctx, address)
	switch {
	case err == nil:
		if err := userRepo.SetAdmin(ctx, existing.ID, true); err != nil {
			return fmt.Errorf("failed to flag seed admin: %w", err)
		}
		lgr.Debug().Str("email", address).Msg("Seed admin already exists")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("failed to look up seed admin: %w", err)
	}

	branch, ok := catalog.ParseBranch(admin.Branch)
	if !ok {
		return fmt.Errorf("seed admin branch %q is not a known branch", admin.Branch)
	}

	hash, err := pkgAuth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	user := &appModels.User{Email: address, Password: hash, EmailVerified: true}
	profile := &appModels.Profile{Name: admin.Name, Branch: branch, IsAdmin: true}
	id, err := userRepo.CreateAccount(ctx, user, profile)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	lgr.Info().Int64("userID", id).Str("email", address).Msg("Seed admin created")
	return nil
}
