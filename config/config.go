package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	S3        S3Config
	Images    ImageConfig
	Sequence  SequenceConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	MaxBodyBytes    int64
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	Endpoint        string // S3-compatible endpoint such as MinIO; path-style addressing
}

// ImageConfig selects where part and set images are stored.
// Provider "s3" uses S3Config, "local" writes under LocalDir and serves it at LocalURL.
type ImageConfig struct {
	Provider   string
	RootFolder string
	LocalDir   string
	LocalURL   string
}

type SequenceConfig struct {
	Backend string // database, redis
}

type SchedulerConfig struct {
	OrphanAuditEnabled bool
	OrphanAuditSpec    string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "5000"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			MaxBodyBytes:    parseInt64(getEnv("MAX_BODY_BYTES", "10485760"), 10<<20),
			LogLevel:        getEnv("LOG_LEVEL", ""),
			LogFormat:       getEnv("LOG_FORMAT", "console"),
			ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "lego_inventory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(parseInt64(getEnv("REDIS_DB", "0"), 0)),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "lego-inventory-images"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Images: ImageConfig{
			Provider:   getEnv("IMAGE_PROVIDER", "s3"),
			RootFolder: getEnv("IMAGE_ROOT_FOLDER", "Lego_Inventory"),
			LocalDir:   getEnv("IMAGE_LOCAL_DIR", "./uploads"),
			LocalURL:   getEnv("IMAGE_LOCAL_URL", "http://localhost:5000/uploads"),
		},
		Sequence: SequenceConfig{
			Backend: getEnv("SEQUENCE_BACKEND", "database"),
		},
		Scheduler: SchedulerConfig{
			OrphanAuditEnabled: parseBool(getEnv("ORPHAN_AUDIT_ENABLED", "true")),
			OrphanAuditSpec:    getEnv("ORPHAN_AUDIT_SPEC", "0 3 * * *"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Sequence.Backend {
	case "database":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("sequence backend redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown sequence backend %q", c.Sequence.Backend)
	}

	switch c.Images.Provider {
	case "s3", "local":
	default:
		return fmt.Errorf("unknown image provider %q", c.Images.Provider)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
