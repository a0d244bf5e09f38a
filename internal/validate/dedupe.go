package validate

import (
	"regexp"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTitle lowercases a title and strips everything that is not a
// letter or digit, so punctuation and casing variants collide.
func normalizeTitle(title string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(title), "")
}

// Dedupe removes cards whose normalized title and type match an earlier
// card, keeping the first occurrence. Cards whose titles normalize to the
// empty string are kept as-is; there is nothing meaningful to collide on.
func Dedupe(cards []types.Card) []types.Card {
	seen := make(map[string]bool, len(cards))
	out := make([]types.Card, 0, len(cards))

	for _, card := range cards {
		norm := normalizeTitle(card.Title)
		if norm == "" {
			out = append(out, card)
			continue
		}
		key := string(card.Type) + "\x00" + norm
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, card)
	}
	return out
}
