// Package routes wires controllers onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/matjarhq/matjar/app/controllers"
	appgraphql "github.com/matjarhq/matjar/app/graphql"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/middleware"
	"github.com/matjarhq/matjar/pkg/response"
	"github.com/matjarhq/matjar/pkg/router"
	"github.com/matjarhq/matjar/pkg/ws"
)

// RegisterAPI mounts every endpoint of the admin backend.
func RegisterAPI(r *router.Router) {
	newsRepo := repositories.NewNewsRepository()
	categoryRepo := repositories.NewCategoryRepository()
	adRepo := repositories.NewAdRepository()
	galleryRepo := repositories.NewGalleryRepository()
	userRepo := repositories.NewUserRepository()

	newsUploader := services.NewUploader(config.NewsMediaDir())
	adUploader := services.NewUploader(config.AdsMediaDir())
	galleryUploader := services.NewUploader(config.GalleryMediaDir())

	newsService := services.NewNewsService(newsRepo, categoryRepo, newsUploader)
	adService := services.NewAdService(adRepo, adUploader)
	authService := services.NewAuthService(userRepo)

	newsController := controllers.NewNewsController(newsRepo, newsService)
	categoryController := controllers.NewCategoryController(categoryRepo)
	adController := controllers.NewAdController(adRepo, adService)
	galleryController := controllers.NewGalleryController(galleryRepo, galleryUploader)
	authController := controllers.NewAuthController(authService)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	api := r.Group("/api")
	// Credential guessing is the only brute-forceable surface; throttle it.
	api.Post("/login", "auth.login", authController.Login, middleware.RateLimit(10, time.Minute))

	// Read endpoints are open; the dashboard embeds them without a session.
	api.Get("/news", "news.index", newsController.Index)
	api.Get("/news/{id}", "news.show", newsController.Show)
	api.Get("/categories", "categories.index", categoryController.Index)
	api.Get("/ads", "ads.index", adController.Index)
	api.Get("/gallery", "gallery.index", galleryController.Index)
	api.Get("/pricing/fields", "pricing.fields", newsController.PricingFields)

	schema, err := appgraphql.NewSchema(newsRepo, categoryRepo)
	if err != nil {
		logger.Error("graphql: schema build failed", "error", err)
	} else {
		api.Post("/graphql", "graphql", appgraphql.Handler(schema))
	}

	api.Get("/ws/catalog", "ws.catalog", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, ws.CatalogHub)
	})

	// Mutations require a session token; the middleware stores the actor
	// id in the request context.
	protected := api.Group("", middleware.Auth)
	protected.Get("/me", "auth.me", authController.Me)
	protected.Post("/news", "news.store", newsController.Store)
	protected.Delete("/news/{id}", "news.destroy", newsController.Destroy)
	protected.Post("/categories", "categories.store", categoryController.Store)
	protected.Post("/ads", "ads.store", adController.Store)
	protected.Put("/ads/{id}", "ads.update", adController.Update)
	protected.Delete("/ads/{id}", "ads.destroy", adController.Destroy)
	protected.Post("/gallery", "gallery.store", galleryController.Store)
}
