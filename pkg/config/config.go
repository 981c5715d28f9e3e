package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Shop     ShopConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Janitor  JanitorConfig
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
	backend := c.Storage.Normalized()
	switch backend {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage backend", EnvRedisURL, EnvRedisAddr)
		}
	case StoragePostgres:
		c.DB.Driver = DBDriverPostgres
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	case StorageSQLite:
		c.DB.Driver = DBDriverSQLite
		if c.DB.DSN == "" {
			c.DB.DSN = defaultSQLiteDSN
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageBackend, c.Storage.Backend)
	}
	c.Storage.Backend = backend

	if _, err := c.Shop.Location(); err != nil {
		return err
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SB_APP_ENV" required:"true"`
	Port         string `envconfig:"SB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the backend that plays the role of the browser's local storage.
type StorageConfig struct {
	Backend   string `envconfig:"SB_STORAGE_BACKEND" default:"memory"`
	Namespace string `envconfig:"SB_STORAGE_NAMESPACE" default:"sb"`
	// AutoMigrate applies the embedded goose migrations on boot for SQL backends.
	AutoMigrate bool `envconfig:"SB_STORAGE_AUTO_MIGRATE" default:"false"`
}

// Normalized returns the lower-cased backend name.
func (s StorageConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Backend))
}

// IsSQL reports whether the backend is served by the gorm client.
func (s StorageConfig) IsSQL() bool {
	b := s.Normalized()
	return b == StoragePostgres || b == StorageSQLite
}

type DBConfig struct {
	DSN    string `envconfig:"SB_DB_DSN"`
	Driver string `envconfig:"SB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SB_DB_HOST"`
	Port     int    `envconfig:"SB_DB_PORT" default:"5432"`
	User     string `envconfig:"SB_DB_USER"`
	Password string `envconfig:"SB_DB_PASSWORD"`
	Name     string `envconfig:"SB_DB_NAME"`
	SSLMode  string `envconfig:"SB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SB_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SB_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SB_REDIS_URL"`
	Address      string        `envconfig:"SB_REDIS_ADDR"`
	Password     string        `envconfig:"SB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SB_REDIS_WRITE_TIMEOUT" default:"5s"`
	// KeyTTL bounds how long an idle guest cart survives; zero keeps it forever.
	KeyTTL time.Duration `envconfig:"SB_REDIS_KEY_TTL" default:"720h"`
}

// SessionConfig controls the signed guest session token that scopes a cart.
type SessionConfig struct {
	Secret     string        `envconfig:"SB_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"SB_SESSION_ISSUER" default:"sister-blooms"`
	TTL        time.Duration `envconfig:"SB_SESSION_TTL" default:"2160h"`
	CookieName string        `envconfig:"SB_SESSION_COOKIE" default:"sb_session"`
	Secure     bool          `envconfig:"SB_SESSION_COOKIE_SECURE" default:"true"`
}

type ShopConfig struct {
	CatalogPath string `envconfig:"SB_CATALOG_PATH"`
	// WhatsAppNumber overrides the number shipped with the catalog.
	WhatsAppNumber string `envconfig:"SB_WHATSAPP_NUMBER"`
	WhatsAppHost   string `envconfig:"SB_WHATSAPP_HOST" default:"wa.me"`
	Timezone       string `envconfig:"SB_SHOP_TIMEZONE" default:"Africa/Johannesburg"`
}

// Location resolves the shop timezone used to decide what "today" is for deliveries.
func (s ShopConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s %q: %w", EnvShopTimezone, name, err)
	}
	return loc, nil
}

type CheckoutConfig struct {
	RateLimit  int64         `envconfig:"SB_CHECKOUT_RATE_LIMIT" default:"10"`
	RateWindow time.Duration `envconfig:"SB_CHECKOUT_RATE_WINDOW" default:"1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"SB_METRICS_ENABLED" default:"true"`
}

// JanitorConfig drives the housekeeping worker that prunes idle carts from
// the SQL storage backend.
type JanitorConfig struct {
	Interval  time.Duration `envconfig:"SB_JANITOR_INTERVAL" default:"6h"`
	Retention time.Duration `envconfig:"SB_JANITOR_RETENTION" default:"720h"`
	LockTTL   time.Duration `envconfig:"SB_JANITOR_LOCK_TTL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
