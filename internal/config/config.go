package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bimakw/amm-calculator/internal/domain/decmath"
)

// Config holds the API server settings
type Config struct {
	Port          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogLevel      string
	LogEnv        string
	Precision     int
	SwapFee       decimal.Decimal
	CacheTTL      time.Duration
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// a missing .env is fine
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidEnvFile, f, err)
		}
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENV", "prod")
	v.SetDefault("DECIMAL_PRECISION", strconv.Itoa(decmath.DefaultPrecision))
	v.SetDefault("SWAP_FEE", "0.003")
	v.SetDefault("CACHE_TTL", "30s")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	precision, err := strconv.Atoi(strings.TrimSpace(v.GetString("DECIMAL_PRECISION")))
	if err != nil || precision < decmath.MinPrecision {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrecision, v.GetString("DECIMAL_PRECISION"))
	}

	fee, err := decimal.NewFromString(strings.TrimSpace(v.GetString("SWAP_FEE")))
	if err != nil || fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFee, v.GetString("SWAP_FEE"))
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("CACHE_TTL")))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCacheTTL, v.GetString("CACHE_TTL"))
	}

	redisDB, err := strconv.Atoi(strings.TrimSpace(v.GetString("REDIS_DB")))
	if err != nil || redisDB < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRedisDB, v.GetString("REDIS_DB"))
	}

	return &Config{
		Port:          v.GetString("PORT"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		LogEnv:        strings.ToLower(v.GetString("LOG_ENV")),
		Precision:     precision,
		SwapFee:       fee,
		CacheTTL:      ttl,
	}, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}
