// Package config loads application configuration from file and
// environment via viper.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// MaxUploadBytes bounds a single multipart upload.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// BedrockConfig holds the model endpoint configuration.
type BedrockConfig struct {
	ModelID          string        `mapstructure:"model_id"`
	ModelName        string        `mapstructure:"model_name"`
	Region           string        `mapstructure:"region"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
}

// AuthConfig holds authentication configuration. When Required is false
// the studio is open and no login routes are mounted.
type AuthConfig struct {
	Required    bool          `mapstructure:"required"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Users       []UserConfig  `mapstructure:"users"`
}

// UserConfig is a statically configured studio user.
type UserConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// RedisConfig holds Redis configuration. An empty address disables Redis
// and with it the rate limiter.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig bounds generation calls per client.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/imagestudio")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix("STUDIO")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("STUDIO_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("STUDIO_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations that cannot produce a working server.
func (c *Config) validate() error {
	if c.Bedrock.ModelID == "" {
		return fmt.Errorf("config: bedrock.model_id is required")
	}
	if c.Bedrock.Region == "" {
		return fmt.Errorf("config: bedrock.region is required")
	}
	if c.Auth.Required {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("config: auth.jwt_secret is required when auth.required is set")
		}
		if len(c.Auth.Users) == 0 {
			return fmt.Errorf("config: auth.users must not be empty when auth.required is set")
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_bytes", int64(20<<20))

	// Bedrock defaults
	v.SetDefault("bedrock.model_id", "amazon.nova-canvas-v1:0")
	v.SetDefault("bedrock.model_name", "Amazon Bedrock - Nova Canvas")
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.request_timeout", 2*time.Minute)
	v.SetDefault("bedrock.failure_threshold", 5)
	v.SetDefault("bedrock.breaker_timeout", 60*time.Second)

	// Auth defaults
	v.SetDefault("auth.required", false)
	v.SetDefault("auth.token_expiry", 12*time.Hour)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
