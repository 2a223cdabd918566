package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Archive backends for generated exports
const (
	ArchiveNone  = "none"
	ArchiveLocal = "local"
	ArchiveS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	LogLevel  string
	PublicURL string
	Database  DatabaseConfig
	Mail      MailConfig
	Archive   ArchiveConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
	Alter    bool
}

// MailConfig holds the director notification settings.
// An empty SMTPHost keeps the log-only mailer.
type MailConfig struct {
	DirectorEmail string
	From          string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
}

// ArchiveConfig selects where generated exports are copied
type ArchiveConfig struct {
	Backend  string
	Dir      string
	S3Bucket string
	S3Region string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg := &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3210"),
		JWTSecret: jwtSecret,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		PublicURL: strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "registro_documentos"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Mail: MailConfig{
			DirectorEmail: getEnv("DIRECTOR_EMAIL", "diretoria@ipex.com.br"),
			From:          getEnv("MAIL_FROM", "registro@ipex.com.br"),
			SMTPHost:      os.Getenv("SMTP_HOST"),
			SMTPPort:      smtpPort,
			SMTPUsername:  os.Getenv("SMTP_USERNAME"),
			SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		},
		Archive: ArchiveConfig{
			Backend:  strings.ToLower(getEnv("EXPORT_ARCHIVE", ArchiveNone)),
			Dir:      getEnv("EXPORT_DIR", "./exports"),
			S3Bucket: os.Getenv("S3_BUCKET"),
			S3Region: getEnv("S3_REGION", "sa-east-1"),
		},
	}

	switch cfg.Archive.Backend {
	case ArchiveNone, ArchiveLocal:
	case ArchiveS3:
		if cfg.Archive.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when EXPORT_ARCHIVE=s3")
		}
	default:
		return nil, fmt.Errorf("unknown EXPORT_ARCHIVE %q", cfg.Archive.Backend)
	}

	return cfg, nil
}

// IsProduction reports whether NODE_ENV is production
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
