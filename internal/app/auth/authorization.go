package auth

import (
	"context"
	"errors"

	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

// AuthorizationService answers permission questions from the profile table
// rather than from token claims.
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// IsAdmin checks if the user holds the admin flag
func (s *AuthorizationService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, apperrors.ErrUnauthenticated
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return false, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting profile in IsAdmin")
		return false, err
	}
	return profile.IsAdmin, nil
}

// ValidateAdmin returns a permission error unless the user is an admin
func (s *AuthorizationService) ValidateAdmin(ctx context.Context, userID int64) error {
	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.NewForbiddenError("only admins can modify content")
	}
	return nil
}
