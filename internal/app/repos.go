package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
)

type Repos struct {
	Obligation repos.ObligationRepo
	Dependency repos.DependencyRepo
	Override   repos.OverrideRepo
	Proof      repos.ProofRepo
	History    repos.HistoryRepo
	Step       repos.StepRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Obligation: repos.NewObligationRepo(db, log),
		Dependency: repos.NewDependencyRepo(db, log),
		Override:   repos.NewOverrideRepo(db, log),
		Proof:      repos.NewProofRepo(db, log),
		History:    repos.NewHistoryRepo(db, log),
		Step:       repos.NewStepRepo(db, log),
	}
}
