package domain

import "time"

// Event is the canonical hecho, the only shape surfaced to filtering and
// rendering. ID is always a string so it can serve as a link key.
type Event struct {
	ID                  string       `json:"id"`
	Titulo              string       `json:"titulo"`
	Descripcion         string       `json:"descripcion"`
	Categoria           string       `json:"categoria"`
	FechaAcontecimiento CalendarDate `json:"fechaAcontecimiento,omitempty"`
	FechaCreacion       CalendarDate `json:"fechaCreacion,omitempty"`
	Lat                 *float64     `json:"lat"`
	Long                *float64     `json:"long"`
}

// HasCoordinates reports whether both lat and long are present.
func (e Event) HasCoordinates() bool {
	return e.Lat != nil && e.Long != nil
}

// BestDate returns the event date, falling back to the creation date.
func (e Event) BestDate() CalendarDate {
	if !e.FechaAcontecimiento.IsZero() {
		return e.FechaAcontecimiento
	}
	return e.FechaCreacion
}

// Filters selects a subset of events. Every empty field is an inactive clause.
type Filters struct {
	Categoria          string       `json:"categoria,omitempty"`
	AcontecimientoFrom CalendarDate `json:"acontecimientoDesde,omitempty"`
	AcontecimientoTo   CalendarDate `json:"acontecimientoHasta,omitempty"`
	CreacionFrom       CalendarDate `json:"creacionDesde,omitempty"`
	CreacionTo         CalendarDate `json:"creacionHasta,omitempty"`
	Text               string       `json:"texto,omitempty"`
}

// IsZero reports whether no clause is active.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Snapshot is one loaded collection with its provenance.
type Snapshot struct {
	LoadID     string
	LoadedAt   time.Time
	Events     []Event
	Categories []string
}
