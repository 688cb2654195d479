package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
	StoreBadger   = "badger"

	MediaLocal = "local"
	MediaS3    = "s3"
)

type Config struct {
	// Server
	ServerPort         string
	PublicBaseURL      string
	GinMode            string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Post store
	StoreDriver string

	// MongoDB
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// SQL database (postgres / mysql)
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBAutoMigrate bool

	// Badger
	BadgerPath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Auth
	JWTSecret    string
	AuthRequired bool

	// Media
	MediaDriver    string
	UploadDir      string
	UploadMaxBytes int64

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3BucketName       string
	S3UseSSL           string

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// Rate limiting
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "5000"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5000"), "/"),
		GinMode:            getEnv("GIN_MODE", "release"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "blogpost"),
		MongoCollection: getEnv("MONGO_COLLECTION", "posts"),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "blogpost"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		BadgerPath: getEnv("BADGER_PATH", "data/badger"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Second),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),

		MediaDriver:    strings.ToLower(getEnv("MEDIA_DRIVER", MediaLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "blogpost-media"),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMySQL, StoreBadger:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.MediaDriver {
	case MediaLocal, MediaS3:
	default:
		return fmt.Errorf("unsupported MEDIA_DRIVER %q", c.MediaDriver)
	}

	if c.AuthRequired && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set when AUTH_REQUIRED is enabled")
	}

	return nil
}

// RedisEnabled reports whether a redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// QueueEnabled reports whether a RabbitMQ host was configured.
func (c *Config) QueueEnabled() bool {
	return c.RabbitMQHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
