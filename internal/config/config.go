package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	MinIO      MinIOConfig
	JWT        JWTConfig
	Worker     WorkerConfig
	OpenRouter OpenRouterConfig
	Bedrock    BedrockConfig
	LLM        LLMConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type WorkerConfig struct {
	ConsumerID string
	// TaskLease is how long a running task may go without a heartbeat
	// before the scheduler force-fails it.
	TaskLease    time.Duration
	ReapInterval time.Duration
	ChunkSize    int
	ChunkOverlap int
}

type OpenRouterConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

type BedrockConfig struct {
	Region  string
	ModelID string
}

type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:   time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout:  time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 60)) * time.Second,
			MaxUploadSize: int64(getEnvInt("SERVER_MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "ragforge"),
			Password: getEnv("DB_PASSWORD", "ragforge"),
			Name:     getEnv("DB_NAME", "ragforge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "ragforge"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "ragforge123"),
			Bucket:    getEnv("MINIO_BUCKET", "ragforge-uploads"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    time.Duration(getEnvInt("JWT_TTL_MINUTES", 1440)) * time.Minute,
		},
		Worker: WorkerConfig{
			ConsumerID:   getEnv("WORKER_CONSUMER_ID", "worker-1"),
			TaskLease:    time.Duration(getEnvInt("TASK_LEASE_MINUTES", 30)) * time.Minute,
			ReapInterval: time.Duration(getEnvInt("REAP_INTERVAL_SECS", 60)) * time.Second,
			ChunkSize:    getEnvInt("CHUNK_SIZE", 1200),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:     getEnv("OPENROUTER_API_KEY", ""),
			Model:      getEnv("OPENROUTER_EMBED_MODEL", ""),
			BaseURL:    getEnv("OPENROUTER_BASE_URL", ""),
			Dimensions: getEnvInt("EMBED_DIMENSIONS", 1024),
		},
		Bedrock: BedrockConfig{
			Region:  getEnv("BEDROCK_REGION", ""),
			ModelID: getEnv("BEDROCK_MODEL_ID", "cohere.embed-english-v4"),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", ""),
			BaseURL: getEnv("LLM_BASE_URL", ""),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
