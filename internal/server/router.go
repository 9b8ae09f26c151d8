package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/obligo-backend/internal/handlers"
)

type RouterConfig struct {
	ServiceName       string
	AllowOrigins      []string
	ObligationHandler *handlers.ObligationHandler
	DependencyHandler *handlers.DependencyHandler
	ProofHandler      *handlers.ProofHandler
	StuckHandler      *handlers.StuckHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		obligations := api.Group("/obligations")
		{
			obligations.POST("", cfg.ObligationHandler.Create)
			obligations.GET("", cfg.ObligationHandler.List)

			// Batch evaluations. Registered before /:id so gin doesn't
			// swallow them as path params.
			obligations.GET("/dependencies", cfg.DependencyHandler.Evaluate)
			obligations.GET("/stuck-detection", cfg.StuckHandler.Detect)

			obligations.GET("/:id", cfg.ObligationHandler.Get)
			obligations.POST("/:id/status", cfg.ObligationHandler.UpdateStatus)
			obligations.POST("/:id/dependencies", cfg.DependencyHandler.CreateDependency)
			obligations.POST("/:id/overrides", cfg.DependencyHandler.CreateOverride)
			obligations.GET("/:id/overrides", cfg.DependencyHandler.ListOverrides)
			obligations.POST("/:id/proofs", cfg.ProofHandler.Add)
			obligations.POST("/:id/proofs/attach-confirmation-email", cfg.ProofHandler.AttachConfirmationEmail)
			obligations.GET("/:id/proofs", cfg.ProofHandler.List)
			obligations.POST("/:id/reattempt", cfg.ObligationHandler.Reattempt)
			obligations.GET("/:id/history", cfg.ObligationHandler.History)
			obligations.GET("/:id/steps", cfg.ObligationHandler.ListSteps)
			obligations.POST("/:id/steps/:stepID/complete", cfg.ObligationHandler.CompleteStep)
		}
	}

	return router
}
