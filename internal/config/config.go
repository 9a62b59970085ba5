package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Upload    UploadConfig    `mapstructure:"upload"`
	SignedURL SignedURLConfig `mapstructure:"signed_url"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type ServerConfig struct {
	Port               int        `mapstructure:"port"`
	Mode               string     `mapstructure:"mode"`
	ExposeErrorDetails bool       `mapstructure:"expose_error_details"`
	CORS               CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// StorageConfig describes the bucket backend.
// Type is one of s3, r2, s3compatible or minio; empty means detect from Endpoint.
type StorageConfig struct {
	Type         string `mapstructure:"type"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	PublicURL    string `mapstructure:"public_url"`
	EnsureBucket bool   `mapstructure:"ensure_bucket"`
}

// UploadConfig limits uploads. MaxFiles and MaxFileSize apply to batch uploads;
// MaxSingleFileSize applies to /upload, where 0 means no limit.
type UploadConfig struct {
	KeyPrefix         string `mapstructure:"key_prefix"`
	MaxFiles          int    `mapstructure:"max_files"`
	MaxFileSize       int64  `mapstructure:"max_file_size"`
	MaxSingleFileSize int64  `mapstructure:"max_single_file_size"`
}

type SignedURLConfig struct {
	SingleExpiry time.Duration `mapstructure:"single_expiry"`
	BatchExpiry  time.Duration `mapstructure:"batch_expiry"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Variable names used by existing deployments
	v.BindEnv("server.port", "PORT")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "AWS_ACCESS_KEY_ID")
	v.BindEnv("storage.secret_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("storage.region", "AWS_REGION")
	v.BindEnv("storage.bucket", "S3_BUCKET_NAME")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")
	v.BindEnv("database.url", "DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.expose_error_details", true)
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.ensure_bucket", false)
	v.SetDefault("upload.key_prefix", "uploads/")
	v.SetDefault("upload.max_files", 10)
	v.SetDefault("upload.max_file_size", 10<<20)
	v.SetDefault("upload.max_single_file_size", 0)
	v.SetDefault("signed_url.single_expiry", 15*time.Minute)
	v.SetDefault("signed_url.batch_expiry", time.Hour)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/uploads.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required"))
	}
	if c.Upload.MaxFiles <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_files must be positive, got %d", c.Upload.MaxFiles))
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_file_size must be positive, got %d", c.Upload.MaxFileSize))
	}
	if c.Upload.MaxSingleFileSize < 0 {
		errs = append(errs, fmt.Errorf("upload.max_single_file_size must not be negative, got %d", c.Upload.MaxSingleFileSize))
	}
	if c.SignedURL.SingleExpiry <= 0 || c.SignedURL.BatchExpiry <= 0 {
		errs = append(errs, errors.New("signed_url expiries must be positive"))
	}
	if c.Database.Enabled && c.Database.Driver == "postgres" && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for the postgres driver"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
