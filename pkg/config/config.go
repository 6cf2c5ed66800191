package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Shipping     ShippingConfig
	Square       SquareConfig
	Envia        EnviaConfig
	Loyalty      LoyaltyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DENTAVIA_APP_ENV" required:"true"`
	Port         string `envconfig:"DENTAVIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DENTAVIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DENTAVIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DENTAVIA_DB_DSN"`
	Driver string `envconfig:"DENTAVIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DENTAVIA_DB_HOST"`
	LegacyPort     int    `envconfig:"DENTAVIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DENTAVIA_DB_USER"`
	LegacyPassword string `envconfig:"DENTAVIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"DENTAVIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"DENTAVIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DENTAVIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DENTAVIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DENTAVIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DENTAVIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DENTAVIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DENTAVIA_REDIS_ADDR"`
	Password     string        `envconfig:"DENTAVIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"DENTAVIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DENTAVIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DENTAVIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DENTAVIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DENTAVIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DENTAVIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DENTAVIA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DENTAVIA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DENTAVIA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DENTAVIA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DENTAVIA_AUTO_MIGRATE" default:"false"`
}

// ShippingConfig carries the package-computation constants. The defaults are
// the production values; tests override them explicitly.
type ShippingConfig struct {
	TareWeightG        float64 `envconfig:"DENTAVIA_SHIPPING_TARE_WEIGHT_G" default:"1200"`
	DefaultItemWeightG float64 `envconfig:"DENTAVIA_SHIPPING_DEFAULT_ITEM_WEIGHT_G" default:"100"`
	VolumetricDivisor  float64 `envconfig:"DENTAVIA_SHIPPING_VOLUMETRIC_DIVISOR" default:"5000"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"DENTAVIA_SQUARE_ACCESS_TOKEN"`
	Env           string `envconfig:"DENTAVIA_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"DENTAVIA_SQUARE_LOCATION_ID"`
	WebhookSecret string `envconfig:"DENTAVIA_SQUARE_WEBHOOK_SECRET"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type EnviaConfig struct {
	APIKey  string        `envconfig:"DENTAVIA_ENVIA_API_KEY"`
	BaseURL string        `envconfig:"DENTAVIA_ENVIA_BASE_URL"`
	Timeout time.Duration `envconfig:"DENTAVIA_ENVIA_TIMEOUT" default:"15s"`
}

type LoyaltyConfig struct {
	PointsPer100Cents string `envconfig:"DENTAVIA_LOYALTY_POINTS_PER_100_CENTS" default:"1"`
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
