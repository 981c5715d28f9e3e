package config

const EnvPrefix = "SB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	defaultSQLiteDSN = "file:storefront.db?cache=shared"
)

const (
	EnvAppEnv         = "SB_APP_ENV"
	EnvPort           = "SB_APP_PORT"
	EnvStorageBackend = "SB_STORAGE_BACKEND"
	EnvDBDSN          = "SB_DB_DSN"
	EnvDBHost         = "SB_DB_HOST"
	EnvDBUser         = "SB_DB_USER"
	EnvDBPassword     = "SB_DB_PASSWORD"
	EnvDBName         = "SB_DB_NAME"
	EnvRedisURL       = "SB_REDIS_URL"
	EnvRedisAddr      = "SB_REDIS_ADDR"
	EnvSessionSecret  = "SB_SESSION_SECRET"
	EnvShopTimezone   = "SB_SHOP_TIMEZONE"
	EnvWhatsAppNumber = "SB_WHATSAPP_NUMBER"
)
