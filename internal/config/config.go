package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	JWTSecret    string
	JWTExpiresIn string

	Log      string
	LogLevel string
	LogDir   string
	Env      string // dev|prod

	UploadDir        string
	MaxUploadFiles   int
	MaxUploadSizeMB  int
	StorageBackend   string // disk|minio
	OrphanSweepEvery string
	OrphanGrace      string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisURL       string
	MeiliURL       string
	MeiliMasterKey string

	CORSOrigins []string
	PublicURL   string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	maxFiles, err := strconv.Atoi(def(os.Getenv("MAX_UPLOAD_FILES"), "5"))
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_FILES: %w", err)
	}
	maxSize, err := strconv.Atoi(def(os.Getenv("MAX_UPLOAD_SIZE_MB"), "10"))
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_MB: %w", err)
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: def(os.Getenv("JWT_EXPIRES_IN"), "24h"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		LogDir:   def(os.Getenv("LOG_DIR"), "logs"),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		UploadDir:        def(os.Getenv("UPLOAD_DIR"), "uploads"),
		MaxUploadFiles:   maxFiles,
		MaxUploadSizeMB:  maxSize,
		StorageBackend:   strings.ToLower(def(os.Getenv("STORAGE_BACKEND"), "disk")),
		OrphanSweepEvery: def(os.Getenv("ORPHAN_SWEEP_INTERVAL"), "1h"),
		OrphanGrace:      def(os.Getenv("ORPHAN_GRACE"), "30m"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    def(os.Getenv("MINIO_BUCKET"), "wikihub-uploads"),
		MinioUseSSL:    strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true"),

		RedisURL:       os.Getenv("REDIS_URL"),
		MeiliURL:       os.Getenv("MEILI_URL"),
		MeiliMasterKey: os.Getenv("MEILI_MASTER_KEY"),

		CORSOrigins: splitCSV(def(os.Getenv("CORS_ORIGINS"), "*")),
		PublicURL:   strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     def(os.Getenv("ADMIN_NAME"), "Administrator"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if _, err := time.ParseDuration(c.JWTExpiresIn); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty")
	}

	switch c.StorageBackend {
	case "disk":
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=minio requires MINIO_ENDPOINT/MINIO_ACCESS_KEY/MINIO_SECRET_KEY")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL is not set, notifications stay within this instance")
	}
	if c.MeiliURL == "" {
		warnings = append(warnings, "MEILI_URL is not set, search falls back to Postgres")
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// TokenTTL — срок жизни JWT. Validate гарантирует корректный формат.
func (c *Config) TokenTTL() time.Duration {
	return parseDurationOr(c.JWTExpiresIn, 24*time.Hour)
}

func (c *Config) SweepInterval() time.Duration {
	return parseDurationOr(c.OrphanSweepEvery, time.Hour)
}

func (c *Config) SweepGrace() time.Duration {
	return parseDurationOr(c.OrphanGrace, 30*time.Minute)
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func parseDurationOr(s string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
