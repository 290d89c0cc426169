package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"extranet_rates/models"
)

var (
	nameReplacements = map[string]string{
		"double":    "dbl",
		"single":    "sgl",
		"twin":      "twn",
		"triple":    "tpl",
		"quadruple": "quad",
		"deluxe":    "dlx",
		"superior":  "sup",
		"standard":  "std",
		"executive": "exec",
		"apartment": "apt",
		"bedroom":   "br",
		"with":      "w",
		"and":       "&",
	}
	dashRegex       = regexp.MustCompile(`\s*[-\x{2013}\x{2014}]\s*`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9&\s]`)
)

// Fingerprint is a short stable hash of a record's composite key. Dash
// variants and spacing in the date range do not change it.
func Fingerprint(rec models.PricingRecord) string {
	input := fmt.Sprintf("%s|%s|%s",
		strings.TrimSpace(rec.RoomID),
		NormalizeDateRange(rec.DateRange),
		strings.TrimSpace(rec.Price),
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}

func NormalizeDateRange(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = dashRegex.ReplaceAllString(s, "-")
	return multiSpaceRegex.ReplaceAllString(s, " ")
}

// NormalizeRoomName folds a room name into a comparable form so the ledger's
// name can be checked against the extranet's display name.
func NormalizeRoomName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnumRegex.ReplaceAllString(name, " ")
	words := strings.Fields(name)
	for i, w := range words {
		if abbrev, ok := nameReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}

func SameRoomName(a, b string) bool {
	return NormalizeRoomName(a) == NormalizeRoomName(b)
}
