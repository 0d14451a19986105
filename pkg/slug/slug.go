package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// letters that carry no combining mark to strip after decomposition.
var foldReplacer = strings.NewReplacer(
	"ı", "i", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe", "đ", "d", "ł", "l",
)

// Generate creates a URL-friendly slug from the given name. Latin letters
// with diacritics are folded to ASCII; scripts without a Latin form (Arabic)
// are dropped, so callers should slug the English name of a facet.
//
// Examples:
//   - "Smart Phones" → "smart-phones"
//   - "Crème Brûlée" → "creme-brulee"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = foldReplacer.Replace(slug)

	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, slug); err == nil {
		slug = folded
	}

	slug = slugRegexp.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Category normalizes a category parameter as read from a page URL: it is
// lower-cased and trimmed, and an empty value becomes "all".
func Category(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return "all"
	}
	return c
}

// List splits a comma-joined slug list, dropping blanks and duplicates while
// preserving first-seen order.
func List(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
