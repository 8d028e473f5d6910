package delivery

import (
	"fmt"

	"storefront/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Catalog usecase.CatalogUseCase
	Cart    usecase.CartUseCase
	Admin   usecase.AdminUseCase
	Auth    usecase.AuthUseCase
	Status  BackendStatus
	Config  *config.Config
	Logger  *logrus.Logger
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	tmpl, err := loadTemplates(deps.Catalog.ResolveImage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(deps.Logger))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", staticFiles())
	if cfg.ImagesDir != "" {
		router.Static("/images", cfg.ImagesDir)
	}

	p := pages{cart: deps.Cart, auth: deps.Auth, store: cfg.StoreInfo}

	search := middleware.SearchRateLimit(cfg.SearchRatePerSec, cfg.SearchBurst, "q", deps.Logger)

	storeHandler := NewStoreHandler(p, deps.Catalog, deps.Logger)
	storeHandler.RegisterRoutes(router, search)

	admin := router.Group("/admin", middleware.AdminGuard(deps.Auth, "/login", deps.Logger))
	NewAdminHandler(p, deps.Admin, deps.Logger).RegisterRoutes(admin)

	apiHandler := NewAPIHandler(deps.Catalog, deps.Cart, deps.Status, deps.Logger)
	apiHandler.RegisterRoutes(router.Group("/api"), search)
	router.GET("/health", apiHandler.Health)

	deps.Logger.Info("Routes registered.")
	return router, nil
}
