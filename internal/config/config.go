package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int              `json:"port"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Database         DatabaseConfig   `json:"database"`
	Github           GithubConfig     `json:"github"`
	AI               AIConfig         `json:"ai"`
	Retrieval        RetrievalConfig  `json:"retrieval"`
	Ingest           IngestConfig     `json:"ingest"`
	FileStore        FileStoreConfig  `json:"file_store"`
	Retention        RetentionConfig  `json:"retention"`
	CORSOrigins      []string         `json:"cors_origins"`
	RateLimitSeconds int              `json:"rate_limit_seconds"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	DSN      string `json:"dsn"`
}

// ResolveDSN returns the explicit dsn when set, otherwise builds one
// from the discrete fields.
func (c DatabaseConfig) ResolveDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.DBName, sslMode)
}

type GithubConfig struct {
	Token        string `json:"token"`
	APIBase      string `json:"api_base"`
	MaxFileBytes int    `json:"max_file_bytes"`
}

type AIConfig struct {
	Provider       string             `json:"provider"`
	Data           interface{}        `json:"data"`
	EmbedProvider  string             `json:"embed_provider"`
	EmbedData      interface{}        `json:"embed_data"`
	Model          string             `json:"model"`
	EmbedModel     string             `json:"embed_model"`
	EmbedDim       int                `json:"embed_dim"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	Fallbacks      []AIFallbackConfig `json:"fallbacks"`
}

type AIFallbackConfig struct {
	Provider string      `json:"provider"`
	Data     interface{} `json:"data"`
	Model    string      `json:"model"`
}

type RetrievalConfig struct {
	TopK          int     `json:"top_k"`
	Threshold     float64 `json:"threshold"`
	FallbackLimit int     `json:"fallback_limit"`
}

type IngestConfig struct {
	InsertBatchSize int `json:"insert_batch_size"`
	MaxFileBytes    int `json:"max_file_bytes"`
}

type FileStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

type RetentionConfig struct {
	Cron       string `json:"cron"`
	MaxAgeDays int    `json:"max_age_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedData == nil {
		cfg.AI.EmbedData = cfg.AI.Data
	}
	if cfg.AI.EmbedDim == 0 {
		cfg.AI.EmbedDim = 1536
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = 0.15
	}
	if cfg.Retrieval.FallbackLimit == 0 {
		cfg.Retrieval.FallbackLimit = 5
	}
	if cfg.Ingest.InsertBatchSize == 0 {
		cfg.Ingest.InsertBatchSize = 50
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return nil, fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		if cfg.FileStore.S3.Endpoint == "" || cfg.FileStore.S3.Bucket == "" || cfg.FileStore.S3.SecretID == "" || cfg.FileStore.S3.SecretKey == "" {
			return nil, fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "cn"
		}
	default:
		return nil, fmt.Errorf("file_store.type must be local or s3")
	}
	if cfg.Retention.Cron == "" {
		cfg.Retention.Cron = "0 4 * * *"
	}
	if cfg.Retention.MaxAgeDays == 0 {
		cfg.Retention.MaxAgeDays = 30
	}
	if cfg.RateLimitSeconds == 0 {
		cfg.RateLimitSeconds = 3
	}
	return &cfg, nil
}
