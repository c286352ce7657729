package discovery

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseSlugID extracts the listing id from "<title-words>-<id>". Only the part
// after the last hyphen is read; the title words are decoration and are never
// checked against the listing. A slug made only of the id is accepted too.
//
// The id suffix alone decides identity, so slugs are not tamper-evident: any
// prefix resolves to the same listing.
func ParseSlugID(slug string) (int64, bool) {
	s := strings.TrimSpace(slug)
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Slugify builds the canonical slug for a listing: lower-case ASCII words of
// the title joined by hyphens, then the id.
func Slugify(title string, id int64) string {
	// A transform chain carries buffers, so each call builds its own.
	foldAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(foldAccents, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}
	if b.Len() > 0 {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(id, 10))
	return b.String()
}
