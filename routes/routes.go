package routes

import (
	"github.com/gin-gonic/gin"

	"hunarscan/internal/auth"
	handlers "hunarscan/internal/handlers/shared"
	"hunarscan/internal/middleware"
	"hunarscan/pkg/logger"
)

type Handlers struct {
	Review *handlers.ReviewHandler
	Worker *handlers.WorkerHandler
	Client *handlers.ClientHandler
	Health *handlers.HealthHandler
}

type Options struct {
	Verifier       auth.Verifier
	Logger         *logger.Logger
	AllowedOrigins []string
}

// SetupRoutes registers every endpoint on r.
func SetupRoutes(r *gin.Engine, h Handlers, opts Options) {
	r.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(opts.Logger),
		middleware.LoggingMiddleware(opts.Logger),
		middleware.CORSMiddleware(opts.AllowedOrigins),
	)

	requireAuth := middleware.AuthRequired(opts.Verifier, opts.Logger)

	r.GET("/health", h.Health.Health)

	v1 := r.Group("/api/v1")
	{
		// Public directory
		v1.GET("/workers", h.Worker.SearchWorkers)
		v1.GET("/workers/:id", h.Worker.GetWorker)
		v1.GET("/workers/:id/reviews", h.Review.ListReviews)

		// Authenticated writes
		v1.POST("/workers", requireAuth, h.Worker.CreateWorker)
		v1.POST("/clients", requireAuth, h.Client.CreateClient)
		v1.POST("/reviews", requireAuth, h.Review.SubmitReview)
	}

	// Paths used by the existing web client.
	legacy := r.Group("/api")
	legacy.Use(requireAuth)
	{
		legacy.POST("/jobs/create", h.Review.SubmitReview)
		legacy.POST("/worker/create", h.Worker.CreateWorker)
		legacy.POST("/client/create", h.Client.CreateClient)
	}
}
