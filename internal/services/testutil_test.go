package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/types"
)

// newTestDB opens an isolated in-memory database with the full schema. One
// connection only: a second connection to :memory: would see an empty
// database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&types.Obligation{},
		&types.ObligationDependency{},
		&types.ObligationOverride{},
		&types.ObligationProof{},
		&types.ObligationHistoryEvent{},
		&types.ObligationStep{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// testEnv bundles the repos and services wired against one test database.
type testEnv struct {
	db         *gorm.DB
	obligation repos.ObligationRepo
	dependency repos.DependencyRepo
	override   repos.OverrideRepo
	proof      repos.ProofRepo
	history    repos.HistoryRepo
	step       repos.StepRepo

	obligationSvc ObligationService
	dependencySvc DependencyService
	overrideSvc   OverrideService
	proofSvc      ProofService
	statusSvc     StatusService
	stuckSvc      StuckService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger()

	obligationRepo := repos.NewObligationRepo(db, log)
	dependencyRepo := repos.NewDependencyRepo(db, log)
	overrideRepo := repos.NewOverrideRepo(db, log)
	proofRepo := repos.NewProofRepo(db, log)
	historyRepo := repos.NewHistoryRepo(db, log)
	stepRepo := repos.NewStepRepo(db, log)

	return &testEnv{
		db:         db,
		obligation: obligationRepo,
		dependency: dependencyRepo,
		override:   overrideRepo,
		proof:      proofRepo,
		history:    historyRepo,
		step:       stepRepo,

		obligationSvc: NewObligationService(db, log, obligationRepo, stepRepo, historyRepo),
		dependencySvc: NewDependencyService(db, log, obligationRepo, dependencyRepo, overrideRepo),
		overrideSvc:   NewOverrideService(db, log, obligationRepo, dependencyRepo, overrideRepo),
		proofSvc:      NewProofService(db, log, obligationRepo, proofRepo),
		statusSvc:     NewStatusService(db, log, obligationRepo, dependencyRepo, overrideRepo, proofRepo, stepRepo, historyRepo),
		stuckSvc:      NewStuckService(db, log, obligationRepo, dependencyRepo, overrideRepo, proofRepo, 5),
	}
}

// setStatusNow pins the transition engine's clock.
func (e *testEnv) setStatusNow(now time.Time) {
	e.statusSvc.(*statusService).now = func() time.Time { return now }
}

// setStuckNow pins the batch detector's clock.
func (e *testEnv) setStuckNow(now time.Time) {
	e.stuckSvc.(*stuckService).now = func() time.Time { return now }
}

func (e *testEnv) mustCreate(t *testing.T, obl *types.Obligation) *types.Obligation {
	t.Helper()
	if obl.Title == "" {
		obl.Title = string(obl.Type)
	}
	if obl.Source == "" {
		obl.Source = types.SourceManual
	}
	if err := e.db.Create(obl).Error; err != nil {
		t.Fatalf("create obligation: %v", err)
	}
	return obl
}

func (e *testEnv) mustEdge(t *testing.T, from, to uuid.UUID) {
	t.Helper()
	err := e.db.Create(&types.ObligationDependency{
		ObligationID:          from,
		DependsOnObligationID: to,
	}).Error
	if err != nil {
		t.Fatalf("create dependency edge: %v", err)
	}
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *types.Obligation {
	t.Helper()
	var obl types.Obligation
	if err := e.db.First(&obl, "id = ?", id).Error; err != nil {
		t.Fatalf("reload obligation: %v", err)
	}
	return &obl
}
