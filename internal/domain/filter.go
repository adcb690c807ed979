package domain

import "strings"

// Apply returns the events matching every active clause of f, in input
// order. The result is always a fresh slice; events is never modified.
func Apply(events []Event, f Filters) []Event {
	query := strings.ToLower(strings.TrimSpace(f.Text))
	acontecimiento := !f.AcontecimientoFrom.IsZero() || !f.AcontecimientoTo.IsZero()
	creacion := !f.CreacionFrom.IsZero() || !f.CreacionTo.IsZero()

	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Categoria != "" && e.Categoria != f.Categoria {
			continue
		}
		if acontecimiento && !e.FechaAcontecimiento.Within(f.AcontecimientoFrom, f.AcontecimientoTo) {
			continue
		}
		if creacion && !e.FechaCreacion.Within(f.CreacionFrom, f.CreacionTo) {
			continue
		}
		if query != "" && !matchesText(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// matchesText does a case-insensitive substring search over title and
// description. query must already be lower-cased.
func matchesText(e Event, query string) bool {
	haystack := strings.ToLower(e.Titulo + " " + e.Descripcion)
	return strings.Contains(haystack, query)
}
