package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Storage StorageConfig `yaml:"storage"`

	Dispatch DispatchConfig `yaml:"dispatch"`

	Secrets SecretsConfig `yaml:"secrets"`

	LLM LLMConfig `yaml:"llm"`

	Database struct {
		Driver   string `yaml:"driver"` // none | mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Log LogConfig `yaml:"log"`

	Intake struct {
		StrictSchema bool  `yaml:"strictSchema"`
		MaxBodyBytes int64 `yaml:"maxBodyBytes"`
	} `yaml:"intake"`

	Auth struct {
		// client name -> api key; empty disables authentication
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

type StorageConfig struct {
	Driver            string `yaml:"driver"` // minio | s3
	Endpoint          string `yaml:"endpoint"`
	AccessKey         string `yaml:"accessKey"`
	SecretKey         string `yaml:"secretKey"`
	BucketName        string `yaml:"bucketName"`
	Region            string `yaml:"region"`
	UseSSL            bool   `yaml:"useSSL"`
	JSONFolder        string `yaml:"jsonFolder"`
	RespFolder        string `yaml:"respFolder"`
	ExpirationSeconds int    `yaml:"expirationSeconds"`
	ScratchDir        string `yaml:"scratchDir"`
}

// Expiration of presigned download links
func (s StorageConfig) Expiration() time.Duration {
	return time.Duration(s.ExpirationSeconds) * time.Second
}

type DispatchConfig struct {
	Driver    string        `yaml:"driver"` // local | http
	WorkerURL string        `yaml:"workerURL"`
	APIKey    string        `yaml:"apiKey"` // sent to the worker when it requires auth
	QueueSize int           `yaml:"queueSize"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
}

type SecretsConfig struct {
	Provider     string `yaml:"provider"` // file | object | env
	Path         string `yaml:"path"`
	ObjectPrefix string `yaml:"objectPrefix"`
	LLMSecretID  string `yaml:"llmSecretID"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"` // openai | gemini
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"baseURL"`
	MaxTokens   int           `yaml:"maxTokens"`
	Temperature float32       `yaml:"temperature"`
	TopP        float32       `yaml:"topP"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // json | console
	ServiceName string `yaml:"serviceName"`
	File        string `yaml:"file"`
	MaxSize     int    `yaml:"maxSize"`
	MaxBackups  int    `yaml:"maxBackups"`
	MaxAge      int    `yaml:"maxAge"`
	Compress    bool   `yaml:"compress"`
}

// Load baca file config.yaml (optional), lalu .env dan environment override
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, err
	}

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Storage = StorageConfig{
		Driver:            "minio",
		Region:            "us-east-1",
		JSONFolder:        "json",
		RespFolder:        "resp",
		ExpirationSeconds: 3600,
		ScratchDir:        os.TempDir(),
	}
	cfg.Dispatch = DispatchConfig{Driver: "local", QueueSize: 64, Workers: 2, Timeout: 10 * time.Second}
	cfg.Secrets = SecretsConfig{Provider: "env", ObjectPrefix: "secrets"}
	cfg.LLM = LLMConfig{
		Provider:    "openai",
		MaxTokens:   4096,
		Temperature: 0,
		TopP:        1,
		Timeout:     3 * time.Minute,
	}
	cfg.Database.Driver = "none"
	cfg.Log = LogConfig{Level: "info", Format: "json", ServiceName: "scanora"}
	cfg.Intake.MaxBodyBytes = 10 << 20
	cfg.RateLimit.RPS = 5
	cfg.RateLimit.Burst = 20
	return cfg
}

// applyEnv maps the deployment variables onto the config.
func (c *Config) applyEnv() error {
	setString(&c.Storage.Region, "REGION_NAME")
	setString(&c.Storage.BucketName, "BUCKET_NAME")
	setString(&c.Storage.JSONFolder, "JSON_FOLDER")
	setString(&c.Storage.RespFolder, "RESP_FOLDER")
	setString(&c.Dispatch.WorkerURL, "WORKER_FUNCTION")
	setString(&c.Dispatch.APIKey, "WORKER_API_KEY")
	setString(&c.Secrets.LLMSecretID, "BR_API_KEY")
	setString(&c.LLM.Model, "BR_MODEL_ID")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("EXPIRATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXPIRATION: %w", err)
		}
		c.Storage.ExpirationSeconds = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the settings every process needs.
func (c *Config) Validate() error {
	if c.Storage.BucketName == "" {
		return fmt.Errorf("storage.bucketName (BUCKET_NAME) is required")
	}
	if c.Storage.ExpirationSeconds <= 0 {
		return fmt.Errorf("storage.expirationSeconds must be positive, got %d", c.Storage.ExpirationSeconds)
	}
	switch c.Storage.Driver {
	case "minio", "s3":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Dispatch.Driver {
	case "local":
	case "http":
		if c.Dispatch.WorkerURL == "" {
			return fmt.Errorf("dispatch.workerURL (WORKER_FUNCTION) is required for the http dispatcher")
		}
	default:
		return fmt.Errorf("unknown dispatch driver %q", c.Dispatch.Driver)
	}
	switch c.Database.Driver {
	case "", "none", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
