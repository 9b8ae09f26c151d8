package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/handlers"
	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/server"
)

type Handlers struct {
	Obligation *handlers.ObligationHandler
	Dependency *handlers.DependencyHandler
	Proof      *handlers.ProofHandler
	Stuck      *handlers.StuckHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Obligation: handlers.NewObligationHandler(s.Obligation, s.Status),
		Dependency: handlers.NewDependencyHandler(s.Dependency, s.Override),
		Proof:      handlers.NewProofHandler(s.Proof),
		Stuck:      handlers.NewStuckHandler(s.Stuck),
	}
}

func wireRouter(cfg Config, h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:       cfg.ServiceName,
		AllowOrigins:      cfg.AllowOrigins,
		ObligationHandler: h.Obligation,
		DependencyHandler: h.Dependency,
		ProofHandler:      h.Proof,
		StuckHandler:      h.Stuck,
	})
}
