package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SANAD_DATABASE_PASSWORD
const EnvPrefix = "SANAD"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	CORS      CORSConfig
	Verify    VerifyConfig
	Storage   StorageConfig
	Render    RenderConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// VerifyConfig holds settings of the public verification endpoint
type VerifyConfig struct {
	RateLimitEnabled bool
	RateLimit        string        // limiter format, e.g. "60-M"
	CacheTTL         time.Duration // 0 disables caching
}

// StorageConfig holds document storage settings
type StorageConfig struct {
	Driver          string // s3, gcs, filesystem
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // custom S3 endpoint (MinIO)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	CredentialsFile string // GCS service account file
	FilesystemRoot  string
}

// RenderConfig holds voucher rendering settings
type RenderConfig struct {
	TemplatePath  string // empty uses the built-in development template
	FontPath      string
	FontStrategy  string // preserve_template, embed_custom_font
	LogoPlacement string // form_field_only, page_draw_fallback, both
	Flatten       bool
	IncludeQR     bool
	FetchTimeout  time.Duration
	MaxImageBytes int64
	AssetDir      string // base directory for non-URL image references
	Timezone      string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	MetricsEnabled    bool
	LogsEnabled       bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
}

// Load loads configuration from .env, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SANAD_ prefix (e.g., SANAD_DATABASE_PASSWORD)
// 2. Variables from .env (never overriding the real environment)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := fromViper(v)
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults apply to every key not set by the environment, .env or config.toml.
// CORS origins have none: an empty list allows no cross-origin requests.
var defaults = map[string]any{
	"app.name": "sanad-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.dbname":             "sanad",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "sanad.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":       "localhost",
	"redis.port":       6379,
	"redis.key_prefix": "sanad:",

	"jwt.issuer":                  "sanad-backend",
	"jwt.access_token_expiration": 15 * time.Minute,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":     15 * time.Second,
	"http.write_timeout":    30 * time.Second,
	"http.idle_timeout":     60 * time.Second,
	"http.max_header_bytes": 1 << 20,
	"http.max_body_size":    1 << 20,

	"cors.allow_methods": []string{"GET", "POST", "OPTIONS"},
	"cors.allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"cors.max_age":       12 * time.Hour,

	"verify.rate_limit_enabled": true,
	"verify.rate_limit":         "60-M",

	"storage.driver":          "filesystem",
	"storage.bucket":          "receipts",
	"storage.region":          "us-east-1",
	"storage.filesystem_root": "./data/receipts",

	"render.font_strategy":   "embed_custom_font",
	"render.logo_placement":  "page_draw_fallback",
	"render.flatten":         true,
	"render.fetch_timeout":   10 * time.Second,
	"render.max_image_bytes": 5 << 20,
	"render.timezone":        "Asia/Riyadh",

	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		CORS: CORSConfig{
			AllowOrigins:     v.GetStringSlice("cors.allow_origins"),
			AllowMethods:     v.GetStringSlice("cors.allow_methods"),
			AllowHeaders:     v.GetStringSlice("cors.allow_headers"),
			AllowCredentials: v.GetBool("cors.allow_credentials"),
			MaxAge:           v.GetDuration("cors.max_age"),
		},
		Verify: VerifyConfig{
			RateLimitEnabled: v.GetBool("verify.rate_limit_enabled"),
			RateLimit:        v.GetString("verify.rate_limit"),
			CacheTTL:         v.GetDuration("verify.cache_ttl"),
		},
		Storage: StorageConfig{
			Driver:          v.GetString("storage.driver"),
			Bucket:          v.GetString("storage.bucket"),
			Prefix:          v.GetString("storage.prefix"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			CredentialsFile: v.GetString("storage.credentials_file"),
			FilesystemRoot:  v.GetString("storage.filesystem_root"),
		},
		Render: RenderConfig{
			TemplatePath:  v.GetString("render.template_path"),
			FontPath:      v.GetString("render.font_path"),
			FontStrategy:  v.GetString("render.font_strategy"),
			LogoPlacement: v.GetString("render.logo_placement"),
			Flatten:       v.GetBool("render.flatten"),
			IncludeQR:     v.GetBool("render.include_qr"),
			FetchTimeout:  v.GetDuration("render.fetch_timeout"),
			MaxImageBytes: v.GetInt64("render.max_image_bytes"),
			AssetDir:      v.GetString("render.asset_dir"),
			Timezone:      v.GetString("render.timezone"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}
}

// validate reports every invalid setting at once
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(oneOf(db.Driver, "postgres", "sqlite"), "database.driver must be postgres or sqlite, got %q", db.Driver)
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns, "database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
		db.MaxIdleConns, db.MaxOpenConns)
	check(oneOf(c.Storage.Driver, "s3", "gcs", "filesystem"),
		"storage.driver must be one of s3, gcs, filesystem, got %q", c.Storage.Driver)
	check(oneOf(c.Render.FontStrategy, "preserve_template", "embed_custom_font"),
		"render.font_strategy must be preserve_template or embed_custom_font, got %q", c.Render.FontStrategy)
	check(!c.Render.Flatten || c.Render.FontStrategy == "embed_custom_font",
		"render.flatten requires render.font_strategy=embed_custom_font")
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)

	if c.App.IsProduction() {
		check(len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		check(db.Driver != "sqlite", "database.driver cannot be sqlite in production")
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(!slices.Contains(c.CORS.AllowOrigins, "*"), "cors.allow_origins cannot be '*' in production (use specific origins)")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
		check(!c.Render.Flatten || c.Render.FontPath != "",
			"render.font_path is required in production (the built-in font has no Arabic glyphs)")
	}
	return errors.Join(errs...)
}

func oneOf(value string, allowed ...string) bool {
	return slices.Contains(allowed, value)
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
