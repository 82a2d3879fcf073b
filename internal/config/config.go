package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	DB        DBConfig
	Firestore FirestoreConfig
	Identity  IdentityConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Drafter   DrafterConfig
	CORS      CORSConfig
	Email     EmailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// StoreConfig selects the entity store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// FirestoreConfig holds Google Cloud Firestore settings.
type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// IdentityConfig holds Firebase Authentication settings.
type IdentityConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for job media.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DrafterProviderConfig holds settings for a single AI text provider.
type DrafterProviderConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	Endpoint      string `mapstructure:"endpoint"`
	DefaultModel  string `mapstructure:"default_model"`
	MaxRetries    int    `mapstructure:"max_retries"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	BackoffMillis int    `mapstructure:"backoff_millis"`
}

// Timeout returns the per-attempt timeout, defaulting to 60s.
func (p *DrafterProviderConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// Backoff returns the base retry delay, defaulting to 500ms.
func (p *DrafterProviderConfig) Backoff() time.Duration {
	if p.BackoffMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(p.BackoffMillis) * time.Millisecond
}

// DrafterConfig holds the ordered AI provider chain.
type DrafterConfig struct {
	Primary   DrafterProviderConfig `mapstructure:"primary"`
	Secondary DrafterProviderConfig `mapstructure:"secondary"`
	Tertiary  DrafterProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order, skipping blanks.
func (d *DrafterConfig) Providers() []*DrafterProviderConfig {
	var out []*DrafterProviderConfig
	for _, p := range []*DrafterProviderConfig{&d.Primary, &d.Secondary, &d.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// RedisConfig holds Redis settings for the dashboard cache and refresh sessions.
// An empty URL disables Redis and falls back to in-process implementations.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
}

// RateLimitConfig bounds AI draft requests per tenant.
type RateLimitConfig struct {
	DraftRequests int           `mapstructure:"draft_requests"`
	DraftWindow   time.Duration `mapstructure:"draft_window"`
}

// Load reads configuration from environment variables with the FIELDPILOT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIELDPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "20s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("store.driver", StoreFirestore)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fieldpilot")
	v.SetDefault("db.password", "fieldpilot_secret")
	v.SetDefault("db.name", "fieldpilot_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Firebase defaults
	v.SetDefault("firestore.project_id", "")
	v.SetDefault("firestore.credentials_file", "")
	v.SetDefault("identity.project_id", "")
	v.SetDefault("identity.credentials_file", "")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "fieldpilot")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "fieldpilot-media")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("log.level", "debug")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@fieldpilot.app")
	v.SetDefault("email.from_name", "Field Pilot")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Redis defaults
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.dashboard_ttl", "30s")

	// Rate limit defaults
	v.SetDefault("rate_limit.draft_requests", 20)
	v.SetDefault("rate_limit.draft_window", "1m")

	// Drafter defaults
	v.SetDefault("drafter.primary.provider", "endpoint")
	v.SetDefault("drafter.primary.api_key", "")
	v.SetDefault("drafter.primary.endpoint", "")
	v.SetDefault("drafter.primary.default_model", "")
	v.SetDefault("drafter.primary.max_retries", 2)
	v.SetDefault("drafter.primary.timeout_secs", 60)
	v.SetDefault("drafter.primary.backoff_millis", 500)
	for _, tier := range []string{"secondary", "tertiary"} {
		v.SetDefault("drafter."+tier+".provider", "")
		v.SetDefault("drafter."+tier+".api_key", "")
		v.SetDefault("drafter."+tier+".endpoint", "")
		v.SetDefault("drafter."+tier+".default_model", "")
		v.SetDefault("drafter."+tier+".max_retries", 2)
		v.SetDefault("drafter."+tier+".timeout_secs", 60)
		v.SetDefault("drafter."+tier+".backoff_millis", 500)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "FIELDPILOT_SERVER_PORT",
		"server.read_timeout":        "FIELDPILOT_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "FIELDPILOT_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":    "FIELDPILOT_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":         "FIELDPILOT_SERVER_ENVIRONMENT",
		"store.driver":               "FIELDPILOT_STORE_DRIVER",
		"db.host":                    "FIELDPILOT_DB_HOST",
		"db.port":                    "FIELDPILOT_DB_PORT",
		"db.user":                    "FIELDPILOT_DB_USER",
		"db.password":                "FIELDPILOT_DB_PASSWORD",
		"db.name":                    "FIELDPILOT_DB_NAME",
		"db.sslmode":                 "FIELDPILOT_DB_SSLMODE",
		"db.max_open":                "FIELDPILOT_DB_MAX_OPEN",
		"db.max_idle":                "FIELDPILOT_DB_MAX_IDLE",
		"firestore.project_id":       "FIELDPILOT_FIRESTORE_PROJECT_ID",
		"firestore.credentials_file": "FIELDPILOT_FIRESTORE_CREDENTIALS_FILE",
		"identity.project_id":        "FIELDPILOT_IDENTITY_PROJECT_ID",
		"identity.credentials_file":  "FIELDPILOT_IDENTITY_CREDENTIALS_FILE",
		"jwt.secret":                 "FIELDPILOT_JWT_SECRET",
		"jwt.access_expiry":          "FIELDPILOT_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "FIELDPILOT_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "FIELDPILOT_JWT_ISSUER",
		"s3.region":                  "FIELDPILOT_S3_REGION",
		"s3.bucket":                  "FIELDPILOT_S3_BUCKET",
		"s3.endpoint":                "FIELDPILOT_S3_ENDPOINT",
		"s3.access_key":              "FIELDPILOT_S3_ACCESS_KEY",
		"s3.secret_key":              "FIELDPILOT_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "FIELDPILOT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "FIELDPILOT_S3_PRESIGN_EXPIRY",
		"log.level":                  "FIELDPILOT_LOG_LEVEL",
		"cors.allowed_origins":       "FIELDPILOT_CORS_ALLOWED_ORIGINS",
		"email.provider":             "FIELDPILOT_EMAIL_PROVIDER",
		"email.region":               "FIELDPILOT_EMAIL_REGION",
		"email.from_address":         "FIELDPILOT_EMAIL_FROM_ADDRESS",
		"email.from_name":            "FIELDPILOT_EMAIL_FROM_NAME",
		"email.frontend_url":         "FIELDPILOT_EMAIL_FRONTEND_URL",
		"redis.url":                  "FIELDPILOT_REDIS_URL",
		"redis.dashboard_ttl":        "FIELDPILOT_REDIS_DASHBOARD_TTL",
		"rate_limit.draft_requests":  "FIELDPILOT_RATE_LIMIT_DRAFT_REQUESTS",
		"rate_limit.draft_window":    "FIELDPILOT_RATE_LIMIT_DRAFT_WINDOW",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "endpoint", "default_model", "max_retries", "timeout_secs", "backoff_millis"} {
			key := "drafter." + tier + "." + field
			envBindings[key] = "FIELDPILOT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Cloud Run and friends set PORT. Use it if FIELDPILOT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIELDPILOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Store = StoreConfig{
		Driver: strings.ToLower(v.GetString("store.driver")),
	}
	if cfg.Store.Driver != StoreFirestore && cfg.Store.Driver != StorePostgres {
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Firestore = FirestoreConfig{
		ProjectID:       v.GetString("firestore.project_id"),
		CredentialsFile: v.GetString("firestore.credentials_file"),
	}
	cfg.Identity = IdentityConfig{
		ProjectID:       v.GetString("identity.project_id"),
		CredentialsFile: v.GetString("identity.credentials_file"),
	}
	// Identity defaults to the Firestore project; both usually live in one Firebase project.
	if cfg.Identity.ProjectID == "" {
		cfg.Identity.ProjectID = cfg.Firestore.ProjectID
	}
	if cfg.Identity.CredentialsFile == "" {
		cfg.Identity.CredentialsFile = cfg.Firestore.CredentialsFile
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Drafter = DrafterConfig{
		Primary:   loadDrafterProvider(v, "primary"),
		Secondary: loadDrafterProvider(v, "secondary"),
		Tertiary:  loadDrafterProvider(v, "tertiary"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Redis = RedisConfig{
		URL:          v.GetString("redis.url"),
		DashboardTTL: v.GetDuration("redis.dashboard_ttl"),
	}
	cfg.RateLimit = RateLimitConfig{
		DraftRequests: v.GetInt("rate_limit.draft_requests"),
		DraftWindow:   v.GetDuration("rate_limit.draft_window"),
	}

	return cfg, nil
}

func loadDrafterProvider(v *viper.Viper, tier string) DrafterProviderConfig {
	prefix := "drafter." + tier + "."
	return DrafterProviderConfig{
		Provider:      v.GetString(prefix + "provider"),
		APIKey:        v.GetString(prefix + "api_key"),
		Endpoint:      v.GetString(prefix + "endpoint"),
		DefaultModel:  v.GetString(prefix + "default_model"),
		MaxRetries:    v.GetInt(prefix + "max_retries"),
		TimeoutSecs:   v.GetInt(prefix + "timeout_secs"),
		BackoffMillis: v.GetInt(prefix + "backoff_millis"),
	}
}
