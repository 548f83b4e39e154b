// Package story derives stable content fingerprints for news items.
package story

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
	"unicode"

	"github.com/gigtarget/market-report-bot/internal/news"
)

// ID is a sha1 hex digest identifying one underlying story. Two items
// with the same ID are the same story regardless of source.
type ID string

// Tracking query keys stripped during URL canonicalization. Any key with
// the utm_ prefix is dropped as well.
var trackingKeys = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
	"igshid": {},
	"mc_cid": {},
	"mc_eid": {},
}

func isTrackingKey(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, ok := trackingKeys[key]
	return ok
}

// CanonicalizeURL lowercases scheme and host, removes tracking query
// parameters while preserving the order and values of the remaining
// ones, and strips the fragment. Returns "" for unparseable or empty
// input.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = filterQuery(u.RawQuery)

	return u.String()
}

// filterQuery drops tracking pairs from a raw query string without
// re-encoding the survivors, so parameter order and values stay intact.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key := pair
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			key = pair[:idx]
		}
		if isTrackingKey(key) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// NormalizeTitle lowercases, replaces every non-letter non-digit rune
// with a space, and collapses runs of whitespace.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(title)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// Identify returns the fingerprint for an item. The canonical link wins
// when present; otherwise the normalized title plus source domain is
// hashed. Pure: no clock, no process state.
func Identify(item news.Item) ID {
	base := CanonicalizeURL(item.Link)
	if base == "" {
		base = NormalizeTitle(item.Title) + "|" + item.SourceDomain
	}
	sum := sha1.Sum([]byte(base))
	return ID(hex.EncodeToString(sum[:]))
}
