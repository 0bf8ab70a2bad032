package resolve

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, strips diacritics and collapses everything
// that is not a letter or digit into single spaces. The result is the
// comparison form used for both utterances and catalog names, with no
// per-language stemming or grammar.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripper, text); err == nil {
		text = stripped
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// tokenSet splits an already-normalized string into its token set.
func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for token := range a {
		out[token] = struct{}{}
	}
	for token := range b {
		out[token] = struct{}{}
	}
	return out
}

func intersection(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for token := range a {
		if _, ok := b[token]; ok {
			out = append(out, token)
		}
	}
	sort.Strings(out)
	return out
}
