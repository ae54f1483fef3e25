package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Import   ImportConfig   `mapstructure:"import"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	PublicOrigin   string   `mapstructure:"public_origin"`
	InternalSecret string   `mapstructure:"internal_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	CookieDomain   string   `mapstructure:"cookie_domain"`
	CookieSecure   bool     `mapstructure:"cookie_secure"`
	MaxResumes     int      `mapstructure:"max_resumes"`
}

// AuthConfig 包含 JWT 密钥与登录限流参数。
type AuthConfig struct {
	PrivateKeyPath   string        `mapstructure:"private_key_path"`
	PublicKeyPath    string        `mapstructure:"public_key_path"`
	AccessTokenTTL   time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL  time.Duration `mapstructure:"refresh_token_ttl"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
	LockDuration     time.Duration `mapstructure:"lock_duration"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	// 连接池与 SQL 日志级别，零值由 database 包补默认值。
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr 返回 host:port。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// GeminiConfig 配置 AI 简历解析；APIKey 为空时只使用规则解析。
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ImportConfig 配置简历导入。
type ImportConfig struct {
	MaxBytes  int64  `mapstructure:"max_bytes"`
	ClamdAddr string `mapstructure:"clamd_addr"`
}

// EditorConfig 配置撤销/重做历史。
type EditorConfig struct {
	HistorySize int           `mapstructure:"history_size"`
	HistoryTTL  time.Duration `mapstructure:"history_ttl"`
}

// WorkerConfig 配置 PDF 导出 worker。
type WorkerConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	MetricsPort   int           `mapstructure:"metrics_port"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.public_origin", "http://localhost:5173")
	v.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("api.cookie_secure", false)
	v.SetDefault("api.max_resumes", 0)
	v.SetDefault("auth.private_key_path", "keys/jwt_private.pem")
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.login_max_attempts", 5)
	v.SetDefault("auth.login_window", 15*time.Minute)
	v.SetDefault("auth.lock_duration", 15*time.Minute)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumeforge")
	v.SetDefault("database.user", "resumeforge")
	v.SetDefault("database.password", "resumeforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("gemini.timeout", 60*time.Second)
	v.SetDefault("import.max_bytes", 5*1024*1024)
	v.SetDefault("editor.history_size", 50)
	v.SetDefault("editor.history_ttl", 24*time.Hour)
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.render_timeout", 60*time.Second)
	v.SetDefault("worker.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                   "API_PORT",
		"api.public_origin":          "PUBLIC_ORIGIN",
		"api.internal_secret":        "INTERNAL_API_SECRET",
		"api.allowed_origins":        "ALLOWED_ORIGINS",
		"api.cookie_domain":          "COOKIE_DOMAIN",
		"api.cookie_secure":          "COOKIE_SECURE",
		"api.max_resumes":            "MAX_RESUMES_PER_USER",
		"auth.private_key_path":      "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":       "JWT_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":      "JWT_ACCESS_TTL",
		"auth.refresh_token_ttl":     "JWT_REFRESH_TTL",
		"auth.login_max_attempts":    "LOGIN_MAX_ATTEMPTS",
		"auth.login_window":          "LOGIN_WINDOW",
		"auth.lock_duration":         "LOGIN_LOCK_DURATION",
		"database.host":              "DATABASE_HOST",
		"database.port":              "DATABASE_PORT",
		"database.name":              "POSTGRES_DB",
		"database.user":              "POSTGRES_USER",
		"database.password":          "POSTGRES_PASSWORD",
		"database.sslmode":           "DATABASE_SSLMODE",
		"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
		"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
		"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
		"database.log_level":         "DATABASE_LOG_LEVEL",
		"redis.host":                 "REDIS_HOST",
		"redis.port":                 "REDIS_PORT",
		"redis.password":             "REDIS_PASSWORD",
		"redis.db":                   "REDIS_DB",
		"minio.endpoint":             "MINIO_ENDPOINT",
		"minio.public_endpoint":      "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":        "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":    "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":              "MINIO_USE_SSL",
		"minio.bucket":               "MINIO_BUCKET",
		"minio.region":               "MINIO_REGION",
		"minio.bucket_lookup":        "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":   "MINIO_AUTO_CREATE_BUCKET",
		"gemini.api_key":             "GEMINI_API_KEY",
		"gemini.model":               "GEMINI_MODEL",
		"gemini.timeout":             "GEMINI_TIMEOUT",
		"import.max_bytes":           "IMPORT_MAX_BYTES",
		"import.clamd_addr":          "CLAMD_ADDR",
		"editor.history_size":        "EDITOR_HISTORY_SIZE",
		"editor.history_ttl":         "EDITOR_HISTORY_TTL",
		"worker.concurrency":         "WORKER_CONCURRENCY",
		"worker.render_timeout":      "WORKER_RENDER_TIMEOUT",
		"worker.metrics_port":        "WORKER_METRICS_PORT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList 兼容逗号分隔的环境变量写法。
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxResumes < 0 {
		return errors.New("max resumes must not be negative")
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Database.MaxOpenConns < 0 || cfg.Database.MaxIdleConns < 0 {
		return errors.New("database pool sizes must not be negative")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Import.MaxBytes <= 0 {
		return errors.New("import max bytes must be positive")
	}
	if cfg.Editor.HistorySize <= 0 {
		return errors.New("editor history size must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}
