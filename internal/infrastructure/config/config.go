package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Search       SearchConfig
	Session      SessionConfig
	Cache        CacheConfig
	SearchLog    SearchLogConfig
	Availability AvailabilityConfig
	Log          LogConfig
	HTTP         HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SearchConfig holds search engine connection settings
type SearchConfig struct {
	Hosts          []string
	Username       string
	Password       string
	Index          string
	RequestTimeout time.Duration
}

// SessionConfig holds session cookie and storage settings
type SessionConfig struct {
	Secret     string        // HMAC key for the session cookie token
	CookieName string
	TTL        time.Duration // server-side session lifetime
	Domain     string        // cookie domain (empty = current domain)
	Path       string
	Secure     bool
	SameSite   string // "strict", "lax", or "none"
}

// CacheConfig holds advisory search cache settings
type CacheConfig struct {
	Enabled   bool
	SearchTTL time.Duration
}

// SearchLogConfig holds async search logging settings
type SearchLogConfig struct {
	Enabled   bool
	QueueSize int
}

// AvailabilityConfig holds delivery calculation settings
type AvailabilityConfig struct {
	BaseDeliveryDays int // fallback when a warehouse has no schedule
	ScanDays         int // how far ahead schedules are scanned
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	MaxHeaderBytes          int
	MaxBodySize             int64
	RateLimitEnabled        bool
	SearchRateLimitRequests int
	SearchRateLimitWindow   time.Duration
	AuthRateLimitRequests   int
	AuthRateLimitWindow     time.Duration
	CORSAllowOrigins        []string
	CORSAllowMethods        []string
	CORSAllowHeaders        []string
	TrustedProxies          []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Search: SearchConfig{
			Hosts:          v.GetStringSlice("search.hosts"),
			Username:       v.GetString("search.username"),
			Password:       v.GetString("search.password"),
			Index:          v.GetString("search.index"),
			RequestTimeout: v.GetDuration("search.request_timeout"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("session.secret"),
			CookieName: v.GetString("session.cookie_name"),
			TTL:        v.GetDuration("session.ttl"),
			Domain:     v.GetString("session.domain"),
			Path:       v.GetString("session.path"),
			Secure:     v.GetBool("session.secure"),
			SameSite:   v.GetString("session.same_site"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("cache.enabled"),
			SearchTTL: v.GetDuration("cache.search_ttl"),
		},
		SearchLog: SearchLogConfig{
			Enabled:   v.GetBool("search_log.enabled"),
			QueueSize: v.GetInt("search_log.queue_size"),
		},
		Availability: AvailabilityConfig{
			BaseDeliveryDays: v.GetInt("availability.base_delivery_days"),
			ScanDays:         v.GetInt("availability.scan_days"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:             v.GetDuration("http.read_timeout"),
			WriteTimeout:            v.GetDuration("http.write_timeout"),
			IdleTimeout:             v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:          v.GetInt("http.max_header_bytes"),
			MaxBodySize:             v.GetInt64("http.max_body_size"),
			RateLimitEnabled:        v.GetBool("http.rate_limit_enabled"),
			SearchRateLimitRequests: v.GetInt("http.search_rate_limit_requests"),
			SearchRateLimitWindow:   v.GetDuration("http.search_rate_limit_window"),
			AuthRateLimitRequests:   v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:     v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:        v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:        v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:        v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:          v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if len(cfg.Search.Hosts) == 0 {
		cfg.Search.Hosts = []string{"http://localhost:9200"}
	}
	if cfg.Search.Index == "" {
		cfg.Search.Index = "products_current"
	}
	if cfg.Search.RequestTimeout == 0 {
		cfg.Search.RequestTimeout = 5 * time.Second
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "storefront_session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 720 * time.Hour // 30 days, guest carts included
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "/"
	}
	if cfg.Session.SameSite == "" {
		cfg.Session.SameSite = "lax"
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 5 * time.Minute
	}
	if cfg.SearchLog.QueueSize == 0 {
		cfg.SearchLog.QueueSize = 1024
	}
	if cfg.Availability.BaseDeliveryDays == 0 {
		cfg.Availability.BaseDeliveryDays = 3
	}
	if cfg.Availability.ScanDays == 0 {
		cfg.Availability.ScanDays = 14
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, the API takes no large payloads
	}
	if cfg.HTTP.SearchRateLimitRequests == 0 {
		cfg.HTTP.SearchRateLimitRequests = 30
	}
	if cfg.HTTP.SearchRateLimitWindow == 0 {
		cfg.HTTP.SearchRateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// CORS origins deliberately have no wildcard fallback: an empty list
	// rejects cross-origin requests until origins are configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.SearchLog.QueueSize < 0 {
		return fmt.Errorf("search_log.queue_size cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Session.Secret == "" {
			return fmt.Errorf("session.secret is required in production")
		}
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("session.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production (HTTPS required for secure cookies)")
		}
		if c.Session.SameSite == "none" && !c.Session.Secure {
			return fmt.Errorf("session.same_site=none requires session.secure=true")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
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

// Addr returns the host:port pair for the Redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
