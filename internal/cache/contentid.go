// Package cache provides the multi-level result cache keyed by content
// identifier and cache kind (structure, tier output, final result).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

// ContentID derives a stable content identifier from document metadata.
// Title, author and source are case-folded and whitespace-collapsed so that
// trivially different uploads of the same document share cache entries.
func ContentID(meta types.Metadata) string {
	normalize := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	h := sha256.New()
	h.Write([]byte(normalize(meta.Title)))
	h.Write([]byte{0})
	h.Write([]byte(normalize(meta.Author)))
	h.Write([]byte{0})
	h.Write([]byte(normalize(meta.Source)))
	return hex.EncodeToString(h.Sum(nil))[:32]
}
