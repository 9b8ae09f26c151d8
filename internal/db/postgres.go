package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
	"github.com/yungbote/obligo-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "obligo", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Obligation{},
		&types.ObligationDependency{},
		&types.ObligationOverride{},
		&types.ObligationProof{},
		&types.ObligationHistoryEvent{},
		&types.ObligationStep{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_obligation_dependency_obligation_id",
			sql: `
				ALTER TABLE "obligation_dependency"
				ADD CONSTRAINT "fk_obligation_dependency_obligation_id"
				FOREIGN KEY ("obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
		{
			name: "fk_obligation_dependency_depends_on_id",
			sql: `
				ALTER TABLE "obligation_dependency"
				ADD CONSTRAINT "fk_obligation_dependency_depends_on_id"
				FOREIGN KEY ("depends_on_obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
		{
			name: "fk_obligation_override_obligation_id",
			sql: `
				ALTER TABLE "obligation_override"
				ADD CONSTRAINT "fk_obligation_override_obligation_id"
				FOREIGN KEY ("obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
		{
			name: "fk_obligation_proof_obligation_id",
			sql: `
				ALTER TABLE "obligation_proof"
				ADD CONSTRAINT "fk_obligation_proof_obligation_id"
				FOREIGN KEY ("obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
		{
			name: "fk_obligation_history_obligation_id",
			sql: `
				ALTER TABLE "obligation_history"
				ADD CONSTRAINT "fk_obligation_history_obligation_id"
				FOREIGN KEY ("obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
		{
			name: "fk_obligation_step_obligation_id",
			sql: `
				ALTER TABLE "obligation_step"
				ADD CONSTRAINT "fk_obligation_step_obligation_id"
				FOREIGN KEY ("obligation_id")
				REFERENCES "obligation"("id")
				ON DELETE CASCADE
			`,
		},
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", stmt.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
