package ideas

import (
	"strings"
	"unicode"
)

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) map[string]struct{} {
	out := map[string]struct{}{}
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

// similarity is the normalized token overlap (Jaccard index) of two strings.
func similarity(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// nearDuplicate treats two candidates as duplicates when either their titles
// or their full title+description texts overlap above the threshold.
func nearDuplicate(a, b Candidate, threshold float64) bool {
	if similarity(a.Title, b.Title) >= threshold {
		return true
	}
	return similarity(a.Title+" "+a.Description, b.Title+" "+b.Description) >= threshold
}

func normalizeTopic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
