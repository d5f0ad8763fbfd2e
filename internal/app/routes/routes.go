package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/app/controllers"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/blobstore"
)

// Handlers groups the controllers the router mounts. Files is nil unless
// blobs are stored on local disk.
type Handlers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Catalog    *controllers.CatalogController
	Navigation *controllers.NavigationController
	Material   *controllers.MaterialController
	Reference  *controllers.ReferenceController
	Quiz       *controllers.QuizController
	Admin      *controllers.AdminController
	Files      *controllers.FileController
}

// SetupRouter configures all application routes. Upload bodies are capped
// at maxUploadSize plus room for the form fields.
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, maxUploadSize int64) {
	uploadLimit := middleware.UploadLimit(maxUploadSize)

	// Signed links point at the host root, outside the API group
	if h.Files != nil {
		router.GET(blobstore.FilesRoutePrefix+"/:bucket/*path", h.Files.ServeFile)
	}

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	catalog := v1.Group("/catalog")
	{
		catalog.GET("/branches", h.Catalog.GetBranches)
		catalog.GET("/semesters", h.Catalog.GetSemesters)
		catalog.GET("/modules", h.Catalog.GetModules)
		catalog.GET("/branches/:branch/semesters/:semester/subjects", h.Catalog.GetSubjects)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", middleware.ValidateRequest[dto.LoginRequest](), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/resend-verification", h.Auth.ResendVerificationEmail)
		auth.GET("/session", authMiddleware.OptionalAuth(), h.Auth.Session)
	}

	nav := v1.Group("/routes")
	{
		nav.GET("", h.Navigation.ListRoutes)
		nav.GET("/resolve", authMiddleware.OptionalAuth(), h.Navigation.Resolve)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", h.User.GetProfile)
		authenticated.PUT("/me", h.User.UpdateProfile)

		materials := authenticated.Group("/materials")
		{
			materials.GET("", h.Material.ListMaterials)
			materials.GET("/semester/:semester", h.Material.SemesterView)
			materials.GET("/semester/:semester/subject/:subjectId", h.Material.SubjectView)
			materials.GET("/:id", h.Material.GetMaterial)
			materials.GET("/:id/download", h.Material.DownloadMaterial)

			materialsAdmin := materials.Group("")
			materialsAdmin.Use(authMiddleware.AdminRequired())
			{
				materialsAdmin.POST("", uploadLimit, h.Material.CreateMaterial)
				materialsAdmin.PUT("/:id", uploadLimit, h.Material.UpdateMaterial)
				materialsAdmin.DELETE("/:id", h.Material.DeleteMaterial)
			}
		}

		references := authenticated.Group("/references")
		{
			references.GET("", h.Reference.ListReferences)
			references.GET("/semester/:semester", h.Reference.SemesterView)
			references.GET("/semester/:semester/subject/:subjectId", h.Reference.SubjectView)
			references.GET("/:id", h.Reference.GetReference)
			references.GET("/:id/download", h.Reference.DownloadReference)

			referencesAdmin := references.Group("")
			referencesAdmin.Use(authMiddleware.AdminRequired())
			{
				referencesAdmin.POST("", uploadLimit, h.Reference.CreateReference)
				referencesAdmin.PUT("/:id", uploadLimit, h.Reference.UpdateReference)
				referencesAdmin.DELETE("/:id", h.Reference.DeleteReference)
			}
		}

		quiz := authenticated.Group("/quiz")
		{
			quiz.GET("/semester/:semester", h.Quiz.QuizView)
			quiz.GET("/semester/:semester/subject/:subjectId", h.Quiz.QuizView)
			quiz.GET("/semester/:semester/subject/:subjectId/module/:moduleId", h.Quiz.QuizView)
		}

		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.AdminRequired())
		{
			admin.GET("/content", h.Admin.ListContent)
			admin.GET("/blob-operations", h.Admin.ListBlobOperations)
			admin.POST("/reconcile", h.Admin.Reconcile)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
