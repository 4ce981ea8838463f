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
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	Outbox      OutboxConfig
	HTTP        HTTPConfig
	Idempotency IdempotencyConfig
	Telemetry   TelemetryConfig
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

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis connection address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// OutboxConfig holds outbox processor configuration
type OutboxConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// IdempotencyConfig holds idempotency key store configuration
type IdempotencyConfig struct {
	Enabled bool
	Store   string // memory, redis
	TTL     time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string

	// Gateway trust: how the upstream gateway hands this service the
	// caller identity. "headers" trusts X-Tenant-ID/X-User-ID as-is,
	// "jwt" verifies an HMAC-signed gateway token carrying both claims.
	AuthMode      string
	GatewaySecret string
	GatewayIssuer string
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection, development only

	DBTraceEnabled    bool          // otelgorm query tracing
	DBLogFullSQL      bool          // full SQL in spans; never in production
	DBSlowQueryThresh time.Duration // slow query warning threshold

	ProfilingEnabled    bool
	ProfilingServerAddr string // Pyroscope server, e.g. "http://pyroscope:4040"
}

// Load builds the configuration. Sources, highest priority first:
// environment variables with the LEDGER_ prefix, config.toml, then
// built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// Running on defaults and env vars alone is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:         appSection(v),
		Database:    databaseSection(v),
		Redis:       redisSection(v),
		Log:         logSection(v),
		Outbox:      outboxSection(v),
		HTTP:        httpSection(v),
		Idempotency: idempotencySection(v),
		Telemetry:   telemetrySection(v),
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func appSection(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func databaseSection(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
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
	}
}

func redisSection(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func logSection(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func outboxSection(v *viper.Viper) OutboxConfig {
	return OutboxConfig{
		ProcessorEnabled: v.GetBool("outbox.processor_enabled"),
		BatchSize:        v.GetInt("outbox.batch_size"),
		PollInterval:     v.GetDuration("outbox.poll_interval"),
		MaxRetries:       v.GetInt("outbox.max_retries"),
		CleanupEnabled:   v.GetBool("outbox.cleanup_enabled"),
		CleanupRetention: v.GetDuration("outbox.cleanup_retention"),
	}
}

func httpSection(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       v.GetDuration("http.read_timeout"),
		WriteTimeout:      v.GetDuration("http.write_timeout"),
		IdleTimeout:       v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
		MaxBodySize:       v.GetInt64("http.max_body_size"),
		RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests: v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		AuthMode:          v.GetString("http.auth_mode"),
		GatewaySecret:     v.GetString("http.gateway_secret"),
		GatewayIssuer:     v.GetString("http.gateway_issuer"),
	}
}

func idempotencySection(v *viper.Viper) IdempotencyConfig {
	cfg := IdempotencyConfig{
		Enabled: v.GetBool("idempotency.enabled"),
		Store:   v.GetString("idempotency.store"),
		TTL:     v.GetDuration("idempotency.ttl"),
	}
	// On unless explicitly switched off; GetBool cannot distinguish
	// "unset" from "false", so probe the key.
	if !v.IsSet("idempotency.enabled") {
		cfg.Enabled = true
	}
	return cfg
}

func telemetrySection(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:             v.GetBool("telemetry.enabled"),
		CollectorEndpoint:   v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:       v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:         v.GetString("telemetry.service_name"),
		Insecure:            v.GetBool("telemetry.insecure"),
		DBTraceEnabled:      v.GetBool("telemetry.db_trace_enabled"),
		DBLogFullSQL:        v.GetBool("telemetry.db_log_full_sql"),
		DBSlowQueryThresh:   v.GetDuration("telemetry.db_slow_query_threshold"),
		ProfilingEnabled:    v.GetBool("telemetry.profiling_enabled"),
		ProfilingServerAddr: v.GetString("telemetry.profiling_server_address"),
	}
}

func fallbackStr(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func fallbackInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

func fallbackDur(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}

// applyDefaults fills in zero-valued fields. Zero means "not set": none of
// the defaulted settings has a meaningful zero, and explicit zeroes for the
// pool sizes are caught by validate.
func (c *Config) applyDefaults() {
	fallbackStr(&c.App.Name, "shopledger-backend")
	fallbackStr(&c.App.Env, "development")
	fallbackStr(&c.App.Port, "8080")

	fallbackStr(&c.Database.Host, "localhost")
	fallbackInt(&c.Database.Port, 5432)
	fallbackStr(&c.Database.User, "postgres")
	fallbackStr(&c.Database.DBName, "shopledger")
	fallbackStr(&c.Database.SSLMode, "disable")
	fallbackInt(&c.Database.MaxOpenConns, 25)
	fallbackInt(&c.Database.MaxIdleConns, 5)
	fallbackInt(&c.Database.ConnMaxLifetime, 60)
	fallbackInt(&c.Database.ConnMaxIdleTime, 30)

	fallbackStr(&c.Redis.Host, "localhost")
	fallbackInt(&c.Redis.Port, 6379)

	fallbackStr(&c.Log.Level, "info")
	fallbackStr(&c.Log.Format, "console")
	fallbackStr(&c.Log.Output, "stdout")

	fallbackInt(&c.Outbox.BatchSize, 100)
	fallbackDur(&c.Outbox.PollInterval, 5*time.Second)
	fallbackInt(&c.Outbox.MaxRetries, 5)
	fallbackDur(&c.Outbox.CleanupRetention, 168*time.Hour)

	fallbackDur(&c.HTTP.ReadTimeout, 15*time.Second)
	fallbackDur(&c.HTTP.WriteTimeout, 15*time.Second)
	fallbackDur(&c.HTTP.IdleTimeout, 60*time.Second)
	fallbackInt(&c.HTTP.MaxHeaderBytes, 1<<20)
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 1 << 20 // ledger payloads are small
	}
	fallbackInt(&c.HTTP.RateLimitRequests, 100)
	fallbackDur(&c.HTTP.RateLimitWindow, time.Minute)
	fallbackStr(&c.HTTP.AuthMode, "headers")

	// CORS origins get no fallback: an empty list means no cross-origin
	// requests until origins are configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID", "X-User-ID", "Idempotency-Key"}
	}

	fallbackStr(&c.Idempotency.Store, "memory")
	fallbackDur(&c.Idempotency.TTL, 24*time.Hour)

	fallbackStr(&c.Telemetry.CollectorEndpoint, "localhost:4317")
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = 1.0
	}
	fallbackStr(&c.Telemetry.ServiceName, "shopledger-backend")
	fallbackDur(&c.Telemetry.DBSlowQueryThresh, 200*time.Millisecond)
	fallbackStr(&c.Telemetry.ProfilingServerAddr, "http://localhost:4040")
}

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

	switch c.HTTP.AuthMode {
	case "headers", "jwt":
	default:
		return fmt.Errorf("http.auth_mode must be 'headers' or 'jwt', got %q", c.HTTP.AuthMode)
	}

	switch c.Idempotency.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("idempotency.store must be 'memory' or 'redis', got %q", c.Idempotency.Store)
	}
	if c.Idempotency.TTL < 0 {
		return fmt.Errorf("idempotency.ttl cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction enforces the settings that only matter once real
// tenant data is on the line.
func (c *Config) validateProduction() error {
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if c.HTTP.AuthMode == "jwt" {
		if c.HTTP.GatewaySecret == "" {
			return fmt.Errorf("http.gateway_secret is required in production when auth_mode is 'jwt'")
		}
		if len(c.HTTP.GatewaySecret) < 32 {
			return fmt.Errorf("http.gateway_secret must be at least 32 characters in production")
		}
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
	}
	return nil
}
