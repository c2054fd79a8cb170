package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Arbitrum Sepolia defaults. Everything is overridable from the environment;
// nothing in core logic reads these directly.
const (
	DefaultChainID     = 421614
	DefaultNetworkName = "arbitrum-sepolia"

	DefaultTokenAAddress = "0x980B62Da83eFf3D4576C647993b0c1D7faf17c73" // WETH
	DefaultTokenBAddress = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238" // USDC

	DefaultLendingPool = "0x012bAC54348C0E635dCAc9D5FB99f06F24136C9A" // Aave v3 pool
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain
	RPCURL      string
	ChainID     uint64
	NetworkName string
	DialTimeout time.Duration

	// Monitored pair
	TokenAAddress  string
	TokenADecimals int
	TokenASymbol   string
	TokenBAddress  string
	TokenBDecimals int
	TokenBSymbol   string
	FeeTier        uint32

	// Venue registry override (TOML), empty means built-in defaults
	VenuesFile string

	// Scheduling
	PollInterval time.Duration
	TickTimeout  time.Duration
	ExecTimeout  time.Duration

	// Spread evaluation; percent, inclusive comparison
	SpreadThreshold decimal.Decimal

	// Trigger
	TriggerEnabled     bool
	PrivateKey         string
	LendingPool        string
	SettlementContract string
	LoanAsset          string
	LoanAmount         string // integer, smallest unit of the loan asset
	GasLimit           uint64

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	threshold, err := decimal.NewFromString(getEnvOrDefault("SPREAD_THRESHOLD", "1.5"))
	if err != nil {
		return nil, fmt.Errorf("parse SPREAD_THRESHOLD: %w", err)
	}

	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Chain defaults
		RPCURL:      os.Getenv("RPC_URL"),
		ChainID:     getUint64OrDefault("CHAIN_ID", DefaultChainID),
		NetworkName: getEnvOrDefault("NETWORK_NAME", DefaultNetworkName),
		DialTimeout: getDurationOrDefault("DIAL_TIMEOUT", 10*time.Second),

		// Pair defaults: WETH/USDC medium fee
		TokenAAddress:  getEnvOrDefault("TOKEN_A_ADDRESS", DefaultTokenAAddress),
		TokenADecimals: getIntOrDefault("TOKEN_A_DECIMALS", 18),
		TokenASymbol:   getEnvOrDefault("TOKEN_A_SYMBOL", "WETH"),
		TokenBAddress:  getEnvOrDefault("TOKEN_B_ADDRESS", DefaultTokenBAddress),
		TokenBDecimals: getIntOrDefault("TOKEN_B_DECIMALS", 6),
		TokenBSymbol:   getEnvOrDefault("TOKEN_B_SYMBOL", "USDC"),
		FeeTier:        uint32(getUint64OrDefault("FEE_TIER", 3000)),

		VenuesFile: os.Getenv("VENUES_FILE"),

		// Scheduling defaults
		PollInterval: getDurationOrDefault("POLL_INTERVAL", 60*time.Second),
		TickTimeout:  getDurationOrDefault("TICK_TIMEOUT", 30*time.Second),
		ExecTimeout:  getDurationOrDefault("EXEC_TIMEOUT", 5*time.Minute),

		SpreadThreshold: threshold,

		// Trigger defaults
		TriggerEnabled:     getBoolOrDefault("TRIGGER_ENABLED", false),
		PrivateKey:         os.Getenv("PRIVATE_KEY"),
		LendingPool:        getEnvOrDefault("LENDING_POOL", DefaultLendingPool),
		SettlementContract: os.Getenv("SETTLEMENT_CONTRACT"),
		LoanAsset:          getEnvOrDefault("LOAN_ASSET", DefaultTokenAAddress),
		LoanAmount:         getEnvOrDefault("LOAN_AMOUNT", "1000000000000000000"),
		GasLimit:           getUint64OrDefault("GAS_LIMIT", 1_500_000),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "dexarb"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "dexarb123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "dex_arb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid. Configuration errors
// are the only errors allowed to terminate the process.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL cannot be empty")
	}

	if c.ChainID == 0 {
		return fmt.Errorf("CHAIN_ID cannot be zero")
	}

	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if !common.IsHexAddress(c.TokenAAddress) {
		return fmt.Errorf("TOKEN_A_ADDRESS is not a hex address: %q", c.TokenAAddress)
	}

	if !common.IsHexAddress(c.TokenBAddress) {
		return fmt.Errorf("TOKEN_B_ADDRESS is not a hex address: %q", c.TokenBAddress)
	}

	if c.SpreadThreshold.IsNegative() {
		return fmt.Errorf("SPREAD_THRESHOLD cannot be negative, got %s", c.SpreadThreshold)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}

	if c.TickTimeout <= 0 || c.TickTimeout > c.PollInterval {
		return fmt.Errorf("TICK_TIMEOUT must be positive and not exceed POLL_INTERVAL, got %s", c.TickTimeout)
	}

	if c.TriggerEnabled {
		if c.PrivateKey == "" {
			return fmt.Errorf("PRIVATE_KEY is required when TRIGGER_ENABLED is true")
		}

		if !common.IsHexAddress(c.LendingPool) {
			return fmt.Errorf("LENDING_POOL is not a hex address: %q", c.LendingPool)
		}

		if !common.IsHexAddress(c.SettlementContract) {
			return fmt.Errorf("SETTLEMENT_CONTRACT is not a hex address: %q", c.SettlementContract)
		}

		if !common.IsHexAddress(c.LoanAsset) {
			return fmt.Errorf("LOAN_ASSET is not a hex address: %q", c.LoanAsset)
		}

		positive, ok := parseAmount(c.LoanAmount)
		if !ok || !positive {
			return fmt.Errorf("LOAN_AMOUNT must be a positive integer, got %q", c.LoanAmount)
		}
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

// parseAmount reports whether s is a well-formed positive decimal integer.
func parseAmount(s string) (positive, ok bool) {
	if s == "" {
		return false, false
	}

	nonZero := false
	for _, r := range s {
		if r < '0' || r > '9' {
			return false, false
		}
		if r != '0' {
			nonZero = true
		}
	}

	return nonZero, true
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getUint64OrDefault(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	uintVal, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return uintVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
