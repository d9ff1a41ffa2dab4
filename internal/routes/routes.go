package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/auth"
	"github.com/sohailKhanIITD/recipe-app-api/internal/config"
	"github.com/sohailKhanIITD/recipe-app-api/internal/domain/user"
	"github.com/sohailKhanIITD/recipe-app-api/internal/handlers"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	infraRepo "github.com/sohailKhanIITD/recipe-app-api/internal/infra/repository"
	"github.com/sohailKhanIITD/recipe-app-api/internal/middleware"
	"github.com/sohailKhanIITD/recipe-app-api/internal/observability"
	"github.com/sohailKhanIITD/recipe-app-api/internal/storage"
)

// Deps are the long-lived collaborators owned by main.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Revoker auth.Revoker
	Store   storage.Store
	Audit   *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	cfg := deps.Config

	httperr.UseJSONFieldNames()
	r.HandleMethodNotAllowed = true

	// ======================================================
	// 🌍 GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(deps.Logger, deps.Metrics),
		middleware.CORSMiddleware(),
	)

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	userRepo := infraRepo.NewUserGormRepository(deps.DB)
	recipeRepo := infraRepo.NewRecipeGormRepository(deps.DB)

	users := user.NewManager(userRepo, cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(users, tokens, deps.Revoker, deps.Audit, deps.Logger, cfg.Auth.CheckEmailDomain)
	meHandler := handlers.NewMeHandler(users, deps.Audit, deps.Logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(deps.DB), deps.Logger)
	recipeHandler := handlers.NewRecipeHandler(recipeRepo, deps.Store, deps.Audit, deps.Metrics, deps.Logger, handlers.RecipeHandlerConfig{
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		MaxImageSide:   cfg.Storage.MaxImageSide,
	})

	requireAuth := middleware.AuthMiddleware(tokens, deps.Revoker, users, deps.Logger)

	// ======================================================
	// 🩺 OPS
	// ======================================================
	r.GET("/health", healthHandler.Health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if cfg.Storage.Driver != config.StorageS3 && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		r.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir)
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 👤 USER
		// ------------------------------
		userAPI := api.Group("/user")
		{
			userAPI.POST("/create", authHandler.Register)
			userAPI.POST("/token", authHandler.Token)

			me := userAPI.Group("/")
			me.Use(requireAuth)
			{
				me.POST("/logout", authHandler.Logout)
				me.GET("/me", meHandler.GetMe)
				me.PATCH("/me", meHandler.UpdateMe)
				me.GET("/me/audit-logs", auditLogsHandler.List)
			}
		}

		// ------------------------------
		// 🍲 RECIPES
		// ------------------------------
		recipes := api.Group("/recipe/recipes")
		recipes.Use(requireAuth)
		{
			recipes.GET("", recipeHandler.List)
			recipes.GET("/", recipeHandler.List)
			recipes.POST("", recipeHandler.Create)
			recipes.POST("/", recipeHandler.Create)
			recipes.GET("/:id", recipeHandler.Retrieve)
			recipes.PUT("/:id", recipeHandler.Update)
			recipes.PATCH("/:id", recipeHandler.PartialUpdate)
			recipes.DELETE("/:id", recipeHandler.Delete)
			recipes.POST("/:id/upload-image", recipeHandler.UploadImage)
		}
	}
}
