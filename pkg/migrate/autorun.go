package migrate

import (
	"context"
	"fmt"

	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/db"
	"github.com/freshbowl/storefront/pkg/logger"
)

// MaybeRunDev applies migrations on startup when the auto-migrate flag is set
// and the app either runs in dev mode or uses a local SQLite file.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() && client.Dialect() != db.DialectSQLite {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "migrate.autorun.start")

	if err := Run(ctx, sqlDB, client.Dialect(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.autorun.complete")
	return nil
}
