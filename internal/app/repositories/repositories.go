package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/nhance/internal/app/models"
)

// IUserRepository covers credential rows and their profiles
type IUserRepository interface {
	CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfileName(ctx context.Context, userID int64, name string) error
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	MarkEmailVerified(ctx context.Context, userID int64) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// ITokenRepository stores refresh tokens
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// IVerificationTokenRepository stores email verification tokens
type IVerificationTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, expiryDate time.Time) error
	GetTokenInfo(ctx context.Context, token string) (int64, time.Time, error)
	DeleteToken(ctx context.Context, token string) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
	DeleteTokensByUserID(ctx context.Context, userID int64) error
}

// IMaterialRepository stores material records. List treats an empty
// SubjectID or ModuleID in the filter as "any".
type IMaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	List(ctx context.Context, filter models.ContentFilter) ([]*models.Material, error)
	ListPage(ctx context.Context, offset uint64, limit int) ([]*models.Material, int64, error)
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IReferenceRepository stores reference book records
type IReferenceRepository interface {
	Create(ctx context.Context, book *models.ReferenceBook) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReferenceBook, error)
	List(ctx context.Context, filter models.ContentFilter) ([]*models.ReferenceBook, error)
	ListPage(ctx context.Context, offset uint64, limit int) ([]*models.ReferenceBook, int64, error)
	Update(ctx context.Context, book *models.ReferenceBook) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IBlobOperationRepository is the journal of multi-step blob changes
type IBlobOperationRepository interface {
	Create(ctx context.Context, op *models.BlobOperation) error
	UpdateStatus(ctx context.Context, id int64, status models.BlobOpStatus, lastError string, countAttempt bool) error
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.BlobOperation, error)
	List(ctx context.Context, status models.BlobOpStatus, offset uint64, limit int) ([]*models.BlobOperation, int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	TokenRepository             *TokenRepository
	VerificationTokenRepository *VerificationTokenRepository
	MaterialRepository          *MaterialRepository
	ReferenceRepository         *ReferenceRepository
	BlobOperationRepository     *BlobOperationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		TokenRepository:             NewTokenRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
		MaterialRepository:          NewMaterialRepository(db),
		ReferenceRepository:         NewReferenceRepository(db),
		BlobOperationRepository:     NewBlobOperationRepository(db),
	}
}
