package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// StoreTimeout bounds every DynamoDB round trip made by the caches so a
	// slow table fails the operation instead of hanging the caller.
	StoreTimeout time.Duration

	// PartitionLimit caps the number of resident partitions in the
	// notification cache before least-recently-touched eviction kicks in.
	PartitionLimit int

	ShopifyAPIVersion string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	NotificationRequests string
	Stores               string
	BillingCharges       string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "7000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			NotificationRequests: getEnv("DYNAMO_TABLE_NOTIFICATION_REQUESTS", "notification_requests"),
			Stores:               getEnv("DYNAMO_TABLE_STORES", "stores"),
			BillingCharges:       getEnv("DYNAMO_TABLE_BILLING_CHARGES", "billing_charges"),
		},

		StoreTimeout:   time.Duration(getEnvInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,
		PartitionLimit: getEnvInt("CACHE_PARTITION_LIMIT", 1024),

		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", "2025-07"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
