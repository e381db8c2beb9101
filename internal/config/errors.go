package config

import "errors"

var (
	// ErrInvalidPrecision indicates DECIMAL_PRECISION is not an integer of at
	// least 36.
	ErrInvalidPrecision = errors.New("DECIMAL_PRECISION must be an integer >= 36")
	// ErrInvalidFee indicates SWAP_FEE is not a decimal in [0, 1).
	ErrInvalidFee = errors.New("SWAP_FEE must be a decimal in [0, 1)")
	// ErrInvalidCacheTTL indicates CACHE_TTL is not a positive duration.
	ErrInvalidCacheTTL = errors.New("CACHE_TTL must be a positive duration")
	ErrInvalidRedisDB  = errors.New("REDIS_DB must be a non-negative integer")
	// ErrInvalidEnvFile indicates an env file exists but cannot be read or parsed.
	ErrInvalidEnvFile = errors.New("cannot load env file")
)
