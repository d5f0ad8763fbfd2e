package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/nhance/internal/app/auth"
	appControllers "github.com/yigit/nhance/internal/app/controllers"
	appMigrations "github.com/yigit/nhance/internal/app/migrations"
	appRepos "github.com/yigit/nhance/internal/app/repositories"
	appRoutes "github.com/yigit/nhance/internal/app/routes"
	appServices "github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/config"
	"github.com/yigit/nhance/internal/db"
	appMiddleware "github.com/yigit/nhance/internal/middleware"
	pkgAuth "github.com/yigit/nhance/internal/pkg/auth"
	"github.com/yigit/nhance/internal/pkg/blobstore"
	"github.com/yigit/nhance/internal/pkg/email"
	"github.com/yigit/nhance/internal/pkg/helpers"
	"github.com/yigit/nhance/internal/pkg/logger"
	"github.com/yigit/nhance/internal/seed"
)

// DefaultConfigPath is used when no path is given on the command line
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Transfer     *blobstore.Transfer
	Local        *blobstore.LocalBackend

	AuthService      *appServices.AuthService
	MaterialService  appServices.MaterialService
	ReferenceService appServices.ReferenceService
	ViewService      appServices.ViewService
	AdminService     appServices.AdminService
	Reconciler       *appServices.Reconciler

	AuthMiddleware *appMiddleware.AuthMiddleware
	Handlers       appRoutes.Handlers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "nhance",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenDatabase connects to PostgreSQL without touching the schema
func OpenDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// SetupDatabase connects, applies migrations and seeds the bootstrap admin.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := OpenDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database, lgr).Migrate(ctx); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.EnsureAdmin(ctx, appRepos.NewUserRepository(database.Pool), seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
		Branch:   cfg.Seed.AdminBranch,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to seed admin account, proceeding anyway...")
	}

	return database, nil
}

// SetupStorage creates the configured blob backend and its buckets. The
// local backend is also returned so its files can be served.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*blobstore.Transfer, *blobstore.LocalBackend, error) {
	var (
		backend blobstore.Backend
		local   *blobstore.LocalBackend
		err     error
	)

	switch strings.ToLower(cfg.Storage.Driver) {
	case config.StorageDriverMinio:
		backend, err = blobstore.NewMinioBackend(blobstore.MinioConfig{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			UseSSL:    cfg.Storage.Minio.UseSSL,
			Region:    cfg.Storage.Minio.Region,
		})
	default:
		local, err = blobstore.NewLocalBackend(cfg.Storage.LocalPath, cfg.Server.BaseURL, cfg.Storage.SigningSecret)
		backend = local
	}
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize blob storage")
		return nil, nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	transfer := blobstore.NewTransfer(backend, blobstore.Options{
		SignedURLTTL: helpers.ParseDuration(cfg.Storage.SignedURLTTL, blobstore.DefaultSignedURLTTL),
		CacheSize:    cfg.Storage.URLCacheSize,
	}, lgr)

	if err := transfer.EnsureBuckets(ctx, cfg.Storage.MaterialBucket, cfg.Storage.ReferenceBucket); err != nil {
		lgr.Error().Err(err).Msg("Failed to prepare storage buckets")
		return nil, nil, err
	}
	lgr.Info().Str("driver", cfg.Storage.Driver).Msg("Blob storage ready")
	return transfer, local, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, transfer *blobstore.Transfer, local *blobstore.LocalBackend, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Transfer: transfer, Local: local}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)

	deps.JWTService = NewJWTService(cfg)
	deps.AuthService = NewAuthService(cfg, deps.Repos, deps.JWTService, lgr)

	uploads := appServices.NewUploadValidator(cfg.Server.MaxUploadSize)
	deps.MaterialService = appServices.NewMaterialService(
		deps.Repos.MaterialRepository,
		deps.Repos.BlobOperationRepository,
		transfer,
		deps.AuthzService,
		uploads,
		cfg.Storage.MaterialBucket,
		lgr,
	)
	deps.ReferenceService = appServices.NewReferenceService(
		deps.Repos.ReferenceRepository,
		deps.Repos.BlobOperationRepository,
		transfer,
		deps.AuthzService,
		uploads,
		cfg.Storage.ReferenceBucket,
		lgr,
	)
	deps.ViewService = appServices.NewViewService(deps.Repos.MaterialRepository, deps.Repos.ReferenceRepository)

	deps.Reconciler = NewReconciler(cfg, deps.Repos, transfer, lgr)
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.MaterialRepository,
		deps.Repos.ReferenceRepository,
		deps.Repos.BlobOperationRepository,
		deps.Reconciler,
		deps.AuthzService,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	deps.Handlers = appRoutes.Handlers{
		Auth:       appControllers.NewAuthController(deps.AuthService, lgr),
		User:       appControllers.NewUserController(deps.AuthService, lgr),
		Catalog:    appControllers.NewCatalogController(),
		Navigation: appControllers.NewNavigationController(deps.AuthService),
		Material:   appControllers.NewMaterialController(deps.MaterialService, deps.ViewService, deps.AuthzService, lgr),
		Reference:  appControllers.NewReferenceController(deps.ReferenceService, deps.ViewService, deps.AuthzService, lgr),
		Quiz:       appControllers.NewQuizController(deps.ViewService, deps.AuthzService),
		Admin:      appControllers.NewAdminController(deps.AdminService, lgr),
	}
	if local != nil {
		deps.Handlers.Files = appControllers.NewFileController(local)
	}

	return deps
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// NewAuthService builds the identity service and its mailer from configuration
func NewAuthService(cfg *config.Config, repos *appRepos.Repositories, jwtService *pkgAuth.JWTService, lgr zerolog.Logger) *appServices.AuthService {
	verificationTTL := helpers.ParseDuration(cfg.Auth.VerificationTokenTTL, 24*time.Hour)
	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
		TokenTTL:  verificationTTL,
	}, lgr.With().Str("component", "email").Logger())

	return appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.VerificationTokenRepository,
		emailService,
		jwtService,
		appServices.AuthConfig{
			RequireEmailVerification: cfg.Auth.RequireEmailVerification,
			VerificationTokenTTL:     verificationTTL,
		},
		lgr,
	)
}

// NewReconciler builds the blob journal reconciler from configuration
func NewReconciler(cfg *config.Config, repos *appRepos.Repositories, transfer *blobstore.Transfer, lgr zerolog.Logger) *appServices.Reconciler {
	return appServices.NewReconciler(
		repos.BlobOperationRepository,
		repos.MaterialRepository,
		repos.ReferenceRepository,
		transfer,
		appServices.ReconcilerOptions{
			Interval:    helpers.ParseDuration(cfg.Reconcile.Interval, 0),
			Grace:       helpers.ParseDuration(cfg.Reconcile.Grace, 5*time.Minute),
			BatchSize:   cfg.Reconcile.BatchSize,
			MaxAttempts: cfg.Reconcile.MaxAttempts,
		},
		lgr,
	)
}

// corsConfig allows every origin unless a list is configured
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: len(cfg.Server.AllowOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.Server.AllowOrigins
	}
	return c
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()),
		appMiddleware.Metrics(),
		cors.New(corsConfig(cfg)),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, cfg.Server.MaxUploadSize)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
