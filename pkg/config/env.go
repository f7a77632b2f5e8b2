package config

// EnvPrefix is prepended by envconfig to every variable name below.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvPort             = "STOREFRONT_APP_PORT"
	EnvStoreOrderPhone  = "STOREFRONT_STORE_ORDER_PHONE"
	EnvStoreCountryCode = "STOREFRONT_STORE_COUNTRY_CODE"
	EnvCartStoreDriver  = "STOREFRONT_CART_STORE_DRIVER"
	EnvCartFileDir      = "STOREFRONT_CART_FILE_DIR"
	EnvCatalogSeedPath  = "STOREFRONT_CATALOG_SEED_PATH"
	EnvDBDSN            = "STOREFRONT_DB_DSN"
	EnvDBHost           = "STOREFRONT_DB_HOST"
	EnvDBUser           = "STOREFRONT_DB_USER"
	EnvDBName           = "STOREFRONT_DB_NAME"
	EnvDBSQLitePath     = "STOREFRONT_DB_SQLITE_PATH"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvRedisAddr        = "STOREFRONT_REDIS_ADDR"
	EnvUseSQLite        = "STOREFRONT_USE_SQLITE"
	EnvNotificationTTL  = "STOREFRONT_CART_NOTIFICATION_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
