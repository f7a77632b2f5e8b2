package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Store        StoreConfig
	Cart         CartConfig
	Catalog      CatalogConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	driver, err := enums.ParseCartStoreDriver(strings.ToLower(strings.TrimSpace(c.Cart.StoreDriver)))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvCartStoreDriver, err)
	}
	c.Cart.StoreDriver = string(driver)

	switch driver {
	case enums.CartStoreDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required when %s=redis", EnvRedisURL, EnvRedisAddr, EnvCartStoreDriver)
		}
	case enums.CartStoreDriverSQL:
		if c.FeatureFlags.UseSQLite {
			if c.DB.SQLitePath == "" {
				return fmt.Errorf("%s is required when %s=true", EnvDBSQLitePath, EnvUseSQLite)
			}
			return nil
		}
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	case enums.CartStoreDriverFile:
		if c.Cart.FileDir == "" {
			return fmt.Errorf("%s is required when %s=file", EnvCartFileDir, EnvCartStoreDriver)
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig describes the business and the messaging channel orders are handed to.
type StoreConfig struct {
	BusinessName     string `envconfig:"STOREFRONT_STORE_BUSINESS_NAME" default:"Fresh Bowl"`
	OrderPhone       string `envconfig:"STOREFRONT_STORE_ORDER_PHONE" required:"true"`
	CountryCode      string `envconfig:"STOREFRONT_STORE_COUNTRY_CODE" default:"91"`
	LocalPhoneDigits int    `envconfig:"STOREFRONT_STORE_LOCAL_PHONE_DIGITS" default:"10"`
	MessagingHost    string `envconfig:"STOREFRONT_STORE_MESSAGING_HOST" default:"wa.me"`
	ChannelName      string `envconfig:"STOREFRONT_STORE_CHANNEL_NAME" default:"Fresh Bowl Website"`
	Currency         string `envconfig:"STOREFRONT_STORE_CURRENCY" default:"INR"`
}

type CartConfig struct {
	StoreDriver       string        `envconfig:"STOREFRONT_CART_STORE_DRIVER" default:"memory"`
	FileDir           string        `envconfig:"STOREFRONT_CART_FILE_DIR" default:".storefront/carts"`
	SnapshotTTL       time.Duration `envconfig:"STOREFRONT_CART_SNAPSHOT_TTL" default:"720h"`
	IdleTTL           time.Duration `envconfig:"STOREFRONT_CART_IDLE_TTL" default:"30m"`
	MaxCarts          uint64        `envconfig:"STOREFRONT_CART_MAX_CARTS" default:"10000"`
	NotificationTTL   time.Duration `envconfig:"STOREFRONT_CART_NOTIFICATION_TTL" default:"4s"`
	ClearAfterHandoff bool          `envconfig:"STOREFRONT_CART_CLEAR_AFTER_HANDOFF" default:"false"`
}

type CatalogConfig struct {
	SeedPath string `envconfig:"STOREFRONT_CATALOG_SEED_PATH" default:"catalog.toml"`
}

type DBConfig struct {
	DSN        string `envconfig:"STOREFRONT_DB_DSN"`
	SQLitePath string `envconfig:"STOREFRONT_DB_SQLITE_PATH" default:"storefront.db"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
