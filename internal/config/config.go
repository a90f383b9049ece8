package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the trainyard server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Compute  ComputeConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port          int
	Env           string
	RateLimitRPM  int
	ShutdownGrace time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ComputeConfig configures the managed ML backend.
type ComputeConfig struct {
	Region           string
	RoleARN          string
	PreprocessImage  string
	TrainImage       string
	InferenceImage   string
	InvokeTimeout    time.Duration
	MaxTrainRuntime  time.Duration
	PreprocessVolGB  int32
	TrainVolumeGB    int32
}

type StorageConfig struct {
	Bucket       string
	PresignTTL   time.Duration
	ClassListTTL time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("TRAINYARD_PORT", 8080),
			Env:           envString("TRAINYARD_ENV", "development"),
			RateLimitRPM:  envInt("TRAINYARD_RATE_LIMIT_RPM", 120),
			ShutdownGrace: envDuration("TRAINYARD_SHUTDOWN_GRACE", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Compute: ComputeConfig{
			Region:          envString("AWS_REGION", "us-east-1"),
			RoleARN:         os.Getenv("SAGEMAKER_ROLE_ARN"),
			PreprocessImage: os.Getenv("PREPROCESS_IMAGE_URI"),
			TrainImage:      os.Getenv("TRAIN_IMAGE_URI"),
			InferenceImage:  os.Getenv("INFERENCE_IMAGE_URI"),
			InvokeTimeout:   envDurationSecs("COMPUTE_INVOKE_TIMEOUT_SECS", 60*time.Second),
			MaxTrainRuntime: envDurationSecs("COMPUTE_MAX_TRAIN_RUNTIME_SECS", 12*time.Hour),
			PreprocessVolGB: int32(envInt("COMPUTE_PREPROCESS_VOLUME_GB", 30)),
			TrainVolumeGB:   int32(envInt("COMPUTE_TRAIN_VOLUME_GB", 50)),
		},
		Storage: StorageConfig{
			Bucket:       os.Getenv("S3_BUCKET"),
			PresignTTL:   envDuration("S3_PRESIGN_TTL", 15*time.Minute),
			ClassListTTL: envDuration("DATASET_CLASS_LIST_TTL", 60*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Compute.RoleARN == "" {
		return fmt.Errorf("SAGEMAKER_ROLE_ARN is required")
	}
	if c.Compute.PreprocessImage == "" {
		return fmt.Errorf("PREPROCESS_IMAGE_URI is required")
	}
	if c.Compute.TrainImage == "" {
		return fmt.Errorf("TRAIN_IMAGE_URI is required")
	}
	if c.Compute.InferenceImage == "" {
		return fmt.Errorf("INFERENCE_IMAGE_URI is required")
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("TRAINYARD_PORT must be a valid port, got %d", c.Server.Port)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
