// Package bootstrap opens the backing resources shared by the storefront
// binaries: the cart snapshot store and the product catalog.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/multierr"

	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/db"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/migrate"
	pkgredis "github.com/freshbowl/storefront/pkg/redis"
)

// Resources holds the cart store and whichever client backs it. DB and Redis
// are nil unless the configured driver needs them.
type Resources struct {
	Driver enums.CartStoreDriver
	Store  cart.Store
	DB     *db.Client
	Redis  *pkgredis.Client
}

// OpenCartStore connects the snapshot store selected by cfg.Cart.StoreDriver.
func OpenCartStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Resources, error) {
	driver, err := enums.ParseCartStoreDriver(cfg.Cart.StoreDriver)
	if err != nil {
		return nil, err
	}
	res := &Resources{Driver: driver}

	switch driver {
	case enums.CartStoreDriverMemory:
		res.Store = cart.NewMemoryStore()

	case enums.CartStoreDriverFile:
		store, err := cart.NewFileStore(cfg.Cart.FileDir)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		res.Store = store

	case enums.CartStoreDriverRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping redis: %w", err)
		}
		res.Redis = client
		res.Store = cart.NewRedisStore(client, cfg.Cart.SnapshotTTL)

	case enums.CartStoreDriverSQL:
		client, err := db.New(ctx, cfg, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping database: %w", err)
		}
		res.DB = client
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("running dev migrations: %w", err), client.Close())
		}
		res.Store = cart.NewSQLStore(client.DB())
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", string(driver)), "cart store ready")
	}
	return res, nil
}

// Close releases every open client and reports all failures together.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.Redis != nil {
		err = multierr.Append(err, r.Redis.Close())
	}
	if r.DB != nil {
		err = multierr.Append(err, r.DB.Close())
	}
	return err
}

// LoadCatalog reads the TOML seed at path, falling back to the catalog built
// into the binary when the file does not exist.
func LoadCatalog(ctx context.Context, path string, logg *logger.Logger) (*catalog.MemoryCatalog, error) {
	if path != "" {
		c, err := catalog.LoadTOMLFile(path)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading catalog %q: %w", path, err)
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "path", path), "catalog seed not found, using built-in catalog")
		}
	}
	return catalog.LoadDefault()
}
