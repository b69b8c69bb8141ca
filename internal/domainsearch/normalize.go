package domainsearch

import (
	"strings"
	"unicode"
)

// FavoriteSuffixes is the preference list candidates are built from
var FavoriteSuffixes = []string{".com", ".id", ".co.id"}

// MaxCandidates bounds the number of lookups per query
const MaxCandidates = 10

// NormalizeKeyword turns a free-text query into a bare keyword.
// Any TLD typed by the user is dropped; an empty result means no query.
// The steps repeat until nothing changes, so normalizing twice is a no-op.
func NormalizeKeyword(raw string) string {
	v := raw
	for {
		next := normalizeOnce(v)
		if next == v {
			return v
		}
		v = next
	}
}

func normalizeOnce(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = trimProtocol(v)
	v = strings.TrimSuffix(v, "/")
	v = removeSpaces(v)
	if v == "" {
		return ""
	}
	if i := strings.Index(v, "."); i >= 0 {
		return v[:i]
	}
	return v
}

// BuildCandidates expands a keyword into domains, one per favorite suffix
func BuildCandidates(keyword string) []string {
	k := NormalizeKeyword(keyword)
	if k == "" {
		return nil
	}

	candidates := make([]string, 0, len(FavoriteSuffixes))
	for _, suffix := range FavoriteSuffixes {
		if len(candidates) == MaxCandidates {
			break
		}
		candidates = append(candidates, k+suffix)
	}
	return candidates
}

func trimProtocol(v string) string {
	for _, p := range []string{"http://", "https://"} {
		if strings.HasPrefix(v, p) {
			return v[len(p):]
		}
	}
	return v
}

func removeSpaces(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}
