package cache

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Quote kinds used as cache key prefixes
const (
	KindMint   = "mint"
	KindRedeem = "redeem"
	KindSwap   = "swap"
)

// QuoteCacheKey generates a cache key for a quote. The inputs are hashed with
// keccak256 so keys stay short for 36-digit operands; callers must pass
// canonical string forms so equal values share a key.
func QuoteCacheKey(kind string, values ...fmt.Stringer) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	hash := crypto.Keccak256Hash([]byte(kind + "|" + strings.Join(parts, "|")))
	return fmt.Sprintf("quote:%s:%s", kind, hash.Hex())
}
