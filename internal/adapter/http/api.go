package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Query parameters accepted by the filtering endpoints.
const (
	paramCategoria           = "categoria"
	paramAcontecimientoDesde = "acontecimiento_desde"
	paramAcontecimientoHasta = "acontecimiento_hasta"
	paramCreacionDesde       = "creacion_desde"
	paramCreacionHasta       = "creacion_hasta"
	paramTexto               = "q"
)

type hechosResponse struct {
	Count   int            `json:"count"`
	Label   string         `json:"label"`
	Filters domain.Filters `json:"filters"`
	Hechos  []domain.Event `json:"hechos"`
}

type mapaResponse struct {
	view.Summary
	Filters domain.Filters `json:"filters"`
	Scene   *view.Scene    `json:"scene"`
}

type estadoResponse struct {
	LoadID     string         `json:"load_id,omitempty"`
	LoadedAt   time.Time      `json:"loaded_at,omitzero"`
	Events     int            `json:"events"`
	Categories int            `json:"categories"`
	Filters    domain.Filters `json:"filters"`
}

func (s *Server) handleHechos(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events := s.store.Apply(f)
	sharedobs.WriteJSON(w, http.StatusOK, hechosResponse{
		Count:   len(events),
		Label:   view.ResultLabel(len(events)),
		Filters: f,
		Hechos:  events,
	})
}

func (s *Server) handleHecho(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := s.store.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("hecho %q not found", id))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, e)
}

func (s *Server) handleCategorias(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.store.Categories())
}

func (s *Server) handleMapa(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeScene(w, f, s.store.Apply(f))
}

func (s *Server) handleLimpiar(w http.ResponseWriter, _ *http.Request) {
	s.writeScene(w, domain.Filters{}, s.store.Clear())
}

func (s *Server) handleEstado(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	sharedobs.WriteJSON(w, http.StatusOK, estadoResponse{
		LoadID:     snap.LoadID,
		LoadedAt:   snap.LoadedAt,
		Events:     len(snap.Events),
		Categories: len(snap.Categories),
		Filters:    s.store.Filters(),
	})
}

func (s *Server) writeScene(w http.ResponseWriter, f domain.Filters, events []domain.Event) {
	scene := view.NewScene()
	summary := s.renderer.Render(events, scene)
	sharedobs.WriteJSON(w, http.StatusOK, mapaResponse{
		Summary: summary,
		Filters: f,
		Scene:   scene,
	})
}

// parseFilters reads Filters from the query string. Date bounds accept every
// encoding the normalizer does; a bound that cannot be read is an error
// rather than an inactive clause.
func (s *Server) parseFilters(q url.Values) (domain.Filters, error) {
	f := domain.Filters{
		Categoria: strings.TrimSpace(q.Get(paramCategoria)),
		Text:      q.Get(paramTexto),
	}

	bounds := []struct {
		param string
		dst   *domain.CalendarDate
	}{
		{paramAcontecimientoDesde, &f.AcontecimientoFrom},
		{paramAcontecimientoHasta, &f.AcontecimientoTo},
		{paramCreacionDesde, &f.CreacionFrom},
		{paramCreacionHasta, &f.CreacionTo},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(q.Get(b.param))
		if raw == "" {
			continue
		}
		d := s.dates.NormalizeText(raw)
		if d.IsZero() {
			return domain.Filters{}, fmt.Errorf("invalid %s: %q", b.param, raw)
		}
		*b.dst = d
	}
	return f, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
