package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Categories returns the distinct non-empty categories of events, sorted
// alphabetically for lang ignoring case and accents. Entries that compare
// equal keep first-seen order.
func Categories(events []Event, lang language.Tag) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range events {
		if e.Categoria == "" {
			continue
		}
		if _, ok := seen[e.Categoria]; ok {
			continue
		}
		seen[e.Categoria] = struct{}{}
		out = append(out, e.Categoria)
	}

	c := collate.New(lang, collate.Loose)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i], out[j]) < 0
	})
	return out
}
