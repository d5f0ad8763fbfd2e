package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/db"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/dberrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

const usersEmailConstraint = "users_email_key"

// UserRepository handles users and profiles
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateAccount inserts the credential row and its profile in one transaction.
// Emails are stored lower-cased.
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	var id int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("users").
			Columns("email", "password_hash", "email_verified").
			Values(email, user.Password, user.EmailVerified).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create user query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}

		sql, args, err = r.sb.Insert("profiles").
			Columns("user_id", "name", "branch", "is_admin").
			Values(id, profile.Name, profile.Branch, profile.IsAdmin).
			Suffix("RETURNING created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create profile query: %w", err)
		}
		return tx.QueryRow(ctx, sql, args...).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", email).Msg("Error creating account")
		return 0, fmt.Errorf("error creating account: %w", err)
	}

	user.ID = id
	user.Email = email
	profile.UserID = id
	return id, nil
}

func (r *UserRepository) getUser(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select("id", "email", "password_hash", "email_verified", "last_login_at", "created_at", "updated_at").
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Email, &user.Password, &user.EmailVerified, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetProfile retrieves the profile row of a user
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	sql, args, err := r.sb.Select("user_id", "name", "branch", "is_admin", "created_at", "updated_at").
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p := &models.Profile{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.UserID, &p.Name, &p.Branch, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error scanning profile row")
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

func (r *UserRepository) updateProfile(ctx context.Context, userID int64, set map[string]interface{}) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("profiles").
		SetMap(set).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// UpdateProfileName changes the display name. Branch is never updated.
func (r *UserRepository) UpdateProfileName(ctx context.Context, userID int64, name string) error {
	return r.updateProfile(ctx, userID, map[string]interface{}{"name": name})
}

// SetAdmin toggles the admin flag
func (r *UserRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return r.updateProfile(ctx, userID, map[string]interface{}{"is_admin": isAdmin})
}

func (r *UserRepository) updateUser(ctx context.Context, userID int64, set map[string]interface{}) error {
	sql, args, err := r.sb.Update("users").
		SetMap(set).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// MarkEmailVerified flags the email as verified
func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID int64) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"email_verified": true, "updated_at": time.Now()})
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"last_login_at": time.Now()})
}
