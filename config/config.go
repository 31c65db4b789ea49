package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend selectors. The defaults need no external services.
const (
	UserStoreMemory   = "memory"
	UserStorePostgres = "postgres"

	StorageLocal = "local"
	StorageMinio = "minio"
	StorageGCS   = "gcs"

	EventsNone     = "none"
	EventsRabbitMQ = "rabbitmq"
	EventsPubSub   = "pubsub"
)

type Config struct {
	ServerPort     int
	UserStore      string
	StorageBackend string
	EventsBackend  string
	Auth           AuthConfig
	Upload         UploadConfig
	Database       DatabaseConfig
	Minio          MinioConfig
	GCS            GCSConfig
	RabbitMQ       RabbitMQConfig
	PubSub         PubSubConfig
}

type AuthConfig struct {
	// Secret signs session tokens. Required; loaded once at startup.
	Secret string
	// TokenTTLMinutes is the session lifetime in minutes.
	TokenTTLMinutes int
}

type UploadConfig struct {
	// Dir is the storage directory for the local backend.
	Dir string
	// MaxFiles caps the number of files per upload batch.
	MaxFiles int
	// MaxFileSize caps a single file's size in bytes.
	MaxFileSize int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort:     getEnvInt("SERVER_PORT", 8080),
		UserStore:      getEnv("USER_STORE", UserStoreMemory),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageLocal),
		EventsBackend:  getEnv("EVENTS_BACKEND", EventsNone),
		Auth: AuthConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			TokenTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),
		},
		Upload: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", "uploads"),
			MaxFiles:    getEnvInt("UPLOAD_MAX_FILES", 10),
			MaxFileSize: int64(getEnvInt("UPLOAD_MAX_FILE_SIZE", 5<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "uploadimagens"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "uploadimagens_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "uploads"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
