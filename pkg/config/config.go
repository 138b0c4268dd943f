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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Engine       EngineConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SOLARQUOTE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOLARQUOTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOLARQUOTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOLARQUOTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SOLARQUOTE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SOLARQUOTE_DB_DSN"`
	Driver string `envconfig:"SOLARQUOTE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOLARQUOTE_DB_HOST"`
	LegacyPort     int    `envconfig:"SOLARQUOTE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOLARQUOTE_DB_USER"`
	LegacyPassword string `envconfig:"SOLARQUOTE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOLARQUOTE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOLARQUOTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOLARQUOTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOLARQUOTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOLARQUOTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOLARQUOTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOLARQUOTE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOLARQUOTE_REDIS_ADDR"`
	Password     string        `envconfig:"SOLARQUOTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOLARQUOTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOLARQUOTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOLARQUOTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOLARQUOTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOLARQUOTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOLARQUOTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EngineConfig carries the calculation tunables. Every knob has a production
// default; overrides are deployment-level, never per-request, so a loaded
// snapshot stays stable for the lifetime of a calculation.
type EngineConfig struct {
	CommissionPercent        float64 `envconfig:"SOLARQUOTE_ENGINE_COMMISSION_PERCENT" default:"15"`
	QuoteValidityDays        int     `envconfig:"SOLARQUOTE_ENGINE_QUOTE_VALIDITY_DAYS" default:"30"`
	BatterySafetyBuffer      float64 `envconfig:"SOLARQUOTE_ENGINE_BATTERY_SAFETY_BUFFER" default:"1.1"`
	BatteryDepthOfDischarge  float64 `envconfig:"SOLARQUOTE_ENGINE_BATTERY_DOD" default:"0.9"`
	BatteryIncrementKwh      float64 `envconfig:"SOLARQUOTE_ENGINE_BATTERY_INCREMENT_KWH" default:"5"`
	BatteryFloorKwh          float64 `envconfig:"SOLARQUOTE_ENGINE_BATTERY_FLOOR_KWH" default:"10"`
	RetailTariff             float64 `envconfig:"SOLARQUOTE_ENGINE_RETAIL_TARIFF" default:"0.28"`
	FeedInTariff             float64 `envconfig:"SOLARQUOTE_ENGINE_FEED_IN_TARIFF" default:"0.03"`
	PriceEscalationRate      float64 `envconfig:"SOLARQUOTE_ENGINE_PRICE_ESCALATION_RATE" default:"0.03"`
	PanelDegradationRate     float64 `envconfig:"SOLARQUOTE_ENGINE_PANEL_DEGRADATION_RATE" default:"0.005"`
	ProductionFactorKwhPerKw float64 `envconfig:"SOLARQUOTE_ENGINE_PRODUCTION_FACTOR" default:"1400"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SOLARQUOTE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SOLARQUOTE_AUTO_MIGRATE" default:"false"`
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
