package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
)

// LatLng is a map position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a pixel offset.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Marker is one placed event.
type Marker struct {
	ID       string `json:"id"`
	Position LatLng `json:"position"`
	Title    string `json:"title"`
	Popup    string `json:"popup"` // HTML, already escaped
}

// MapSink is the map widget as seen from the renderer.
type MapSink interface {
	ClearMarkers()
	AddMarker(m Marker)
	FitBounds(points []LatLng, padding Point)
	SetView(center LatLng, zoom int)
	InvalidateSize(after time.Duration)
}

// Summary describes one render.
type Summary struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// Renderer draws event lists onto a MapSink.
type Renderer struct {
	DetailURL       string
	FallbackCenter  LatLng
	FallbackZoom    int
	Padding         Point
	InvalidateDelay time.Duration
}

// NewRenderer returns a Renderer with the viewer's default padding and
// resize delay.
func NewRenderer(detailURL string, center LatLng, zoom int) Renderer {
	return Renderer{
		DetailURL:       detailURL,
		FallbackCenter:  center,
		FallbackZoom:    zoom,
		Padding:         Point{X: 20, Y: 20},
		InvalidateDelay: 200 * time.Millisecond,
	}
}

// Render replaces the sink's markers with one per event, then fits the map
// to them or falls back to the default view when there are none.
func (r Renderer) Render(events []domain.Event, sink MapSink) Summary {
	sink.ClearMarkers()

	points := make([]LatLng, 0, len(events))
	for _, e := range events {
		if !e.HasCoordinates() {
			continue
		}
		pos := LatLng{Lat: *e.Lat, Lng: *e.Long}
		points = append(points, pos)
		sink.AddMarker(Marker{
			ID:       e.ID,
			Position: pos,
			Title:    e.ID + " - " + e.Titulo,
			Popup:    r.Popup(e),
		})
	}

	if len(points) > 0 {
		sink.FitBounds(points, r.Padding)
	} else {
		sink.SetView(r.FallbackCenter, r.FallbackZoom)
	}
	sink.InvalidateSize(r.InvalidateDelay)

	return Summary{Count: len(events), Label: ResultLabel(len(events))}
}

// ResultLabel is the result count shown next to the map: "1 resultado",
// "0 resultados", "7 resultados".
func ResultLabel(n int) string {
	if n == 1 {
		return "1 resultado"
	}
	return fmt.Sprintf("%d resultados", n)
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<div class="mm-popup">` +
		`<strong>{{.Title}}</strong><br/>` +
		`<small>Categoría:</small> {{.Category}}<br/>` +
		`<small>Fecha:</small> {{.Date}}` +
		`<div class="mt-2"><a class="mm-link" href="{{.Link}}">Ver más...</a></div>` +
		`</div>`))

type popupData struct {
	Title    string
	Category string
	Date     string
	Link     string
}

// Popup renders the marker popup for e. Every value is HTML-escaped.
func (r Renderer) Popup(e domain.Event) string {
	data := popupData{
		Title:    orDefault(e.Titulo, "(sin título)"),
		Category: orDefault(e.Categoria, "-"),
		Date:     orDefault(e.BestDate().String(), "-"),
		Link:     DetailLink(r.DetailURL, e.ID),
	}
	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, data); err != nil {
		return template.HTMLEscapeString(data.Title)
	}
	return buf.String()
}

// DetailLink builds the detail page URL for id. The id is percent-encoded
// with spaces as %20.
func DetailLink(base, id string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "id=" + strings.ReplaceAll(url.QueryEscape(id), "+", "%20")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
