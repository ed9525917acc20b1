package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"donation-widget/internal/embed"
	"donation-widget/internal/models"
	"donation-widget/internal/validation"

	"github.com/joho/godotenv"
)

const (
	SignerWallet = "wallet"
	SignerKey    = "key"
)

// Config holds all configuration for the application
type Config struct {
	Env         string
	LogLevel    string
	MaxRetries  int
	RetryDelay  time.Duration
	ProjectFile string
	HTTP        HTTPConfig
	Embed       EmbedConfig
	Signer      SignerConfig
	Kafka       KafkaConfig
	Database    DatabaseConfig
	Chains      map[models.ChainID]ChainConfig
}

// HTTPConfig holds HTTP server and client configuration
type HTTPConfig struct {
	Addr    string
	Timeout time.Duration
}

type EmbedConfig struct {
	BaseURL     string
	PackageName string
}

// SignerConfig selects how transfers get signed
type SignerConfig struct {
	Mode       string
	PrivateKey string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	BrokerAddress string
	Topic         string
	BatchSize     int
	BatchTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ChainConfig holds configuration for each blockchain
type ChainConfig struct {
	RpcEndpoint string
	ApiKey      string
	RateLimit   float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env is fine, the variables may be set externally
	_ = godotenv.Load()

	config := &Config{
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MaxRetries:  getEnvAsInt("MAX_RETRIES", 3),
		RetryDelay:  time.Duration(getEnvAsInt("RETRY_DELAY", 2)) * time.Second,
		ProjectFile: getEnv("PROJECT_FILE", ""),
		HTTP: HTTPConfig{
			Addr:    getEnv("HTTP_ADDR", ":8080"),
			Timeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,
		},
		Embed: EmbedConfig{
			BaseURL:     getEnv("EMBED_BASE_URL", embed.DefaultBaseURL),
			PackageName: getEnv("EMBED_PACKAGE_NAME", embed.DefaultPackageName),
		},
		Signer: SignerConfig{
			Mode:       strings.ToLower(getEnv("SIGNER_MODE", SignerWallet)),
			PrivateKey: getEnv("SIGNER_PRIVATE_KEY", ""),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvAsBool("KAFKA_ENABLED", false),
			BrokerAddress: getEnv("KAFKA_BROKER_ADDRESS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC", "donation-transfers"),
			BatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 10),
			BatchTimeout:  time.Duration(getEnvAsInt("KAFKA_BATCH_TIMEOUT", 1)) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "donation_widget"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Chains: make(map[models.ChainID]ChainConfig),
	}

	// Every supported chain defaults to its first public RPC URL
	for _, chain := range models.SupportedChains {
		prefix := fmt.Sprintf("CHAIN_%d_", chain.ID)
		defaultEndpoint := ""
		if len(chain.RpcURLs) > 0 {
			defaultEndpoint = chain.RpcURLs[0]
		}
		config.Chains[chain.ID] = ChainConfig{
			RpcEndpoint: getEnv(prefix+"RPC_ENDPOINT", defaultEndpoint),
			ApiKey:      getEnv(prefix+"API_KEY", ""),
			RateLimit:   getEnvAsFloat(prefix+"RATE_LIMIT", 4),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that would otherwise fail at first use
func (c *Config) Validate() error {
	var errs []error

	switch c.Signer.Mode {
	case SignerWallet:
	case SignerKey:
		if c.Signer.PrivateKey == "" {
			errs = append(errs, errors.New("SIGNER_PRIVATE_KEY is required when SIGNER_MODE=key"))
		}
	default:
		errs = append(errs, fmt.Errorf("SIGNER_MODE must be %q or %q, got %q", SignerWallet, SignerKey, c.Signer.Mode))
	}

	if err := validation.ValidateURL(c.Embed.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("EMBED_BASE_URL: %w", err))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("MAX_RETRIES must be at least 1"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}

	if c.Kafka.Enabled {
		if c.Kafka.BrokerAddress == "" || c.Kafka.Topic == "" {
			errs = append(errs, errors.New("KAFKA_BROKER_ADDRESS and KAFKA_TOPIC are required when Kafka is enabled"))
		}
		if c.Kafka.BatchSize < 1 {
			errs = append(errs, errors.New("KAFKA_BATCH_SIZE must be at least 1"))
		}
	}

	if c.Database.Enabled {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT out of range: %d", c.Database.Port))
		}
		if c.Database.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required when the database is enabled"))
		}
	}

	for id, chain := range c.Chains {
		if chain.RpcEndpoint == "" {
			continue
		}
		if err := validation.ValidateURL(chain.RpcEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("CHAIN_%d_RPC_ENDPOINT: %w", id, err))
		}
		if chain.RateLimit <= 0 {
			errs = append(errs, fmt.Errorf("CHAIN_%d_RATE_LIMIT must be positive", id))
		}
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether logs should go to the console writer
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
