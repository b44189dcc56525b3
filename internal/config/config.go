// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

const defaultUploadMemoryLimit = 32 << 20

// Config holds all runtime configuration for the gateway.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Object storage. Driver "s3" talks to AWS (region + default credential chain),
	// "minio" talks to any S3-compatible endpoint.
	StorageDriver       string
	Bucket              string
	Region              string
	StorageEndpoint     string // optional for s3, required for minio
	StorageAccessKey    string
	StorageSecretKey    string
	StorageUseSSL       bool
	StorageCreateBucket bool

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// UploadMemoryLimit is the multipart threshold in bytes; larger parts spill to disk.
	UploadMemoryLimit int64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StorageDriver:       strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
		Bucket:              os.Getenv("S3_BUCKET_NAME"),
		Region:              os.Getenv("AWS_REGION"),
		StorageEndpoint:     os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:    os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:    os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:       getBool("STORAGE_USE_SSL", true),
		StorageCreateBucket: getBool("STORAGE_CREATE_BUCKET", false),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getEnv("DB_SSLMODE", "prefer"),

		UploadMemoryLimit: getSize("UPLOAD_MEMORY_LIMIT", defaultUploadMemoryLimit),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Missing lists the required keys that are not set. The gateway still starts
// without them; the operations that need them fail at request time.
func (c *Config) Missing() []string {
	required := []struct {
		key, val string
	}{
		{"S3_BUCKET_NAME", c.Bucket},
		{"AWS_REGION", c.Region},
		{"DB_HOST", c.DBHost},
		{"DB_NAME", c.DBName},
		{"DB_USER", c.DBUser},
		{"DB_PASSWORD", c.DBPassword},
	}

	var missing []string
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// DatabaseURL builds a postgres:// connection string from the DB_* settings.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// String renders the configuration for startup logs with secrets masked.
func (c *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "port=%s env=%s log_level=%s ", c.Port, c.AppEnv, c.LogLevel)
	fmt.Fprintf(&sb, "storage_driver=%s bucket=%s region=%s endpoint=%s ",
		c.StorageDriver, c.Bucket, c.Region, c.StorageEndpoint)
	fmt.Fprintf(&sb, "storage_access_key=%s storage_secret_key=%s ",
		mask(c.StorageAccessKey), mask(c.StorageSecretKey))
	fmt.Fprintf(&sb, "db_host=%s db_port=%s db_name=%s db_user=%s db_password=%s db_sslmode=%s ",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, mask(c.DBPassword), c.DBSSLMode)
	fmt.Fprintf(&sb, "upload_memory_limit=%s", units.BytesSize(float64(c.UploadMemoryLimit)))
	return sb.String()
}

func mask(secret string) string {
	if secret == "" {
		return "(empty)"
	}
	return "********"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

// getSize parses human-readable sizes such as "32MB" or "1GiB".
func getSize(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := units.RAMInBytes(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d bytes", key, v, fallback)
		return fallback
	}
	return n
}
