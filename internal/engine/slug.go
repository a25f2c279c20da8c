package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper folds accented characters to their base form so names
// like "Muñoz" slugify cleanly.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify lowercases, strips diacritics, and collapses every non-alphanumeric
// run into a single hyphen.
func Slugify(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugWithID is the slug rule for organizations, people, and events:
// slugify(name) plus the trailing hyphen segment of the ocd id, which keeps
// same-named records distinct. On an unusable name the raw trailing segment
// stands alone.
func SlugWithID(name, ocdID string) string {
	tail := trailingSegment(ocdID)
	base := Slugify(name)
	if base == "" {
		return tail
	}
	return base + "-" + tail
}

// BillSlug is the slug rule for bills: the slugified identifier.
func BillSlug(identifier string) string {
	return Slugify(identifier)
}

// DedupeBillSlugs rewrites duplicated bill slugs in place by appending the
// trailing segment of the ocd id, the collision rule SlugWithID bakes in.
// Identifiers recur when numbering restarts across legislative sessions. The
// first holder keeps the bare slug; the cache iterates in filename order, so
// the assignment is stable across runs.
func DedupeBillSlugs(bills []Bill) {
	seen := make(map[string]bool, len(bills))
	for i := range bills {
		if seen[bills[i].Slug] {
			bills[i].Slug = bills[i].Slug + "-" + trailingSegment(bills[i].OCDID)
		}
		seen[bills[i].Slug] = true
	}
}

// trailingSegment returns the part of the ocd id after the last hyphen. Slug
// collisions fall back to it because it is unique per record.
func trailingSegment(ocdID string) string {
	idx := strings.LastIndex(ocdID, "-")
	if idx < 0 || idx == len(ocdID)-1 {
		return ocdID
	}
	return ocdID[idx+1:]
}
