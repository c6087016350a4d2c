package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. PostgreSQL uses the embedded goose
// migrations; other dialects (sqlite in tests) use AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if db.Dialector.Name() != "postgres" {
		if err := db.SetupJoinTable(&userRecord{}, "Roles", &userRoleRecord{}); err != nil {
			return fmt.Errorf("automigrate: join table: %w", err)
		}
		if err := db.WithContext(ctx).AutoMigrate(&roleRecord{}, &userRecord{}); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info().Str("component", "goose").Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Fatal().Str("component", "goose").Msgf(format, v...)
}
