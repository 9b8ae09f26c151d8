package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/services"
)

type Services struct {
	Obligation services.ObligationService
	Dependency services.DependencyService
	Override   services.OverrideService
	Proof      services.ProofService
	Status     services.StatusService
	Stuck      services.StuckService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Obligation: services.NewObligationService(db, log, r.Obligation, r.Step, r.History),
		Dependency: services.NewDependencyService(db, log, r.Obligation, r.Dependency, r.Override),
		Override:   services.NewOverrideService(db, log, r.Obligation, r.Dependency, r.Override),
		Proof:      services.NewProofService(db, log, r.Obligation, r.Proof),
		Status:     services.NewStatusService(db, log, r.Obligation, r.Dependency, r.Override, r.Proof, r.Step, r.History),
		Stuck:      services.NewStuckService(db, log, r.Obligation, r.Dependency, r.Override, r.Proof, cfg.StaleDays),
	}
}
