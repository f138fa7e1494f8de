package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	OCR       OCRConfig
	Output    OutputConfig
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	R2        R2Config
	Upload    UploadConfig
}

// OCRConfig holds the recognition service endpoint and credentials.
type OCRConfig struct {
	Host          string
	ApplicationID string
	Password      string
	Timeout       int // seconds, per API call
}

// IsConfigured reports whether credentials are present.
func (c OCRConfig) IsConfigured() bool {
	return c.ApplicationID != "" && c.Password != ""
}

type OutputConfig struct {
	Dir string
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	JobsPerHour int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// IsConfigured reports whether artifact mirroring can be enabled.
func (c R2Config) IsConfigured() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

type UploadConfig struct {
	MaxSizeMB int
	TempDir   string
}

// Load reads configuration from an optional env file, the environment and
// an optional config.yaml. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("OCR_APPLICATION_ID")
	readSecret("OCR_PASSWORD")
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("ocr.host", "OCR_HOST")
	_ = v.BindEnv("ocr.application_id", "OCR_APPLICATION_ID")
	_ = v.BindEnv("ocr.password", "OCR_PASSWORD")
	_ = v.BindEnv("ocr.timeout", "OCR_TIMEOUT")
	_ = v.BindEnv("output.dir", "OUTPUT_DIR")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("ratelimit.jobs_per_hour", "RATELIMIT_JOBS_PER_HOUR")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("upload.max_size_mb", "UPLOAD_MAX_SIZE_MB")
	_ = v.BindEnv("upload.temp_dir", "UPLOAD_TEMP_DIR")

	v.SetDefault("ocr.host", "https://cloud-eu.ocrsdk.com")
	v.SetDefault("ocr.timeout", 120)
	v.SetDefault("output.dir", "output")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.jobs_per_hour", 60)
	v.SetDefault("upload.max_size_mb", 50)
	v.SetDefault("upload.temp_dir", os.TempDir())

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		OCR: OCRConfig{
			Host:          strings.TrimRight(v.GetString("ocr.host"), "/"),
			ApplicationID: v.GetString("ocr.application_id"),
			Password:      v.GetString("ocr.password"),
			Timeout:       v.GetInt("ocr.timeout"),
		},
		Output: OutputConfig{
			Dir: v.GetString("output.dir"),
		},
		Server: ServerConfig{
			Port:     v.GetString("server.port"),
			Env:      v.GetString("server.env"),
			LogLevel: v.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			JobsPerHour: v.GetInt("ratelimit.jobs_per_hour"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
		Upload: UploadConfig{
			MaxSizeMB: v.GetInt("upload.max_size_mb"),
			TempDir:   v.GetString("upload.temp_dir"),
		},
	}

	return cfg, nil
}
