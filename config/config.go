package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"mangaverse/database"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr   string
	AdminToken string // Required bearer token for admin-only routes

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Ledger configuration
	TokenChain    string // Chain key for ledger balances (e.g. "solana")
	TokenCurrency string // Currency key for ledger balances
	TokenDecimals int32  // Decimal places used for balance arithmetic

	// Reward configuration
	RewardPool            decimal.Decimal // Default weekly pool when a trigger does not supply one
	RewardCooldown        time.Duration   // Minimum time between two distributions
	WeeklyScheduleEnabled bool            // Run the self-gated distribution trigger in-process
	WeeklyScheduleCheck   time.Duration   // How often the in-process trigger fires

	// Referral configuration
	ReferralBonus decimal.Decimal

	// Chain configuration
	SolanaRPCURL       string
	TokenMint          string
	TreasuryPrivateKey string
	AirdropAmount      decimal.Decimal
	ChainTimeout       time.Duration
	ChainRPS           float64
	WalletSealKey      []byte // 32 byte key sealing custodial wallet secrets

	// NATS configuration
	NATSEnabled bool
	NATSServers string // NATS server addresses (comma-separated)

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		HTTPAddr:   getEnvWithDefault("HTTP_ADDR", ":8080"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		TokenChain:    getEnvWithDefault("TOKEN_CHAIN", "solana"),
		TokenCurrency: getEnvWithDefault("TOKEN_CURRENCY", "MVT"),
		TokenDecimals: 6,

		RewardPool:          decimal.NewFromInt(1000),
		RewardCooldown:      7 * 24 * time.Hour,
		WeeklyScheduleCheck: time.Hour,

		ReferralBonus: decimal.NewFromInt(10),

		SolanaRPCURL:       getEnvWithDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		TokenMint:          os.Getenv("TOKEN_MINT"),
		TreasuryPrivateKey: os.Getenv("TREASURY_PRIVATE_KEY"),
		AirdropAmount:      decimal.NewFromInt(100),
		ChainTimeout:       20 * time.Second,
		ChainRPS:           4,

		NATSEnabled: os.Getenv("NATS_ENABLED") == "true",
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "mangaverse-settlement"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 15000,

		WeeklyScheduleEnabled: os.Getenv("WEEKLY_SCHEDULE_ENABLED") == "true",

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if decimals := os.Getenv("TOKEN_DECIMALS"); decimals != "" {
		parsed, err := strconv.ParseInt(decimals, 10, 32)
		if err != nil || parsed < 0 || parsed > 18 {
			return nil, fmt.Errorf("TOKEN_DECIMALS must be an integer between 0 and 18")
		}
		config.TokenDecimals = int32(parsed)
	}

	var err error
	if config.RewardPool, err = getEnvDecimal("REWARD_POOL", config.RewardPool); err != nil {
		return nil, err
	}
	if config.ReferralBonus, err = getEnvDecimal("REFERRAL_BONUS", config.ReferralBonus); err != nil {
		return nil, err
	}
	if config.AirdropAmount, err = getEnvDecimal("AIRDROP_AMOUNT", config.AirdropAmount); err != nil {
		return nil, err
	}
	if config.RewardCooldown, err = getEnvDuration("REWARD_COOLDOWN", config.RewardCooldown); err != nil {
		return nil, err
	}
	if config.ChainTimeout, err = getEnvDuration("CHAIN_TIMEOUT", config.ChainTimeout); err != nil {
		return nil, err
	}
	if config.WeeklyScheduleCheck, err = getEnvDuration("WEEKLY_SCHEDULE_CHECK", config.WeeklyScheduleCheck); err != nil {
		return nil, err
	}
	if rps := os.Getenv("CHAIN_RPS"); rps != "" {
		if parsed, err := strconv.ParseFloat(rps, 64); err == nil && parsed > 0 {
			config.ChainRPS = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}
	if sealKey := os.Getenv("WALLET_SEAL_KEY"); sealKey != "" {
		key, err := base64.StdEncoding.DecodeString(sealKey)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("WALLET_SEAL_KEY must be 32 bytes encoded as base64")
		}
		config.WalletSealKey = key
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminToken == "" {
			return nil, fmt.Errorf("ADMIN_TOKEN is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if !config.RewardPool.IsPositive() {
			return nil, fmt.Errorf("REWARD_POOL must be positive")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", key)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return parsed, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:            ":0",
		AdminToken:          "test-admin-token",
		TokenChain:          "solana",
		TokenCurrency:       "MVT",
		TokenDecimals:       6,
		RewardPool:          decimal.NewFromInt(1000),
		RewardCooldown:      7 * 24 * time.Hour,
		WeeklyScheduleCheck: time.Hour,
		ReferralBonus:       decimal.NewFromInt(10),
		AirdropAmount:       decimal.NewFromInt(100),
		ChainTimeout:        5 * time.Second,
		ChainRPS:            4,
		OTelExporterType:    "none",
		LogLevel:            "debug",
		Environment:         "test",
	}
}
