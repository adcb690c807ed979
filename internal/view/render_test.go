package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

// recordingSink keeps the order of sink calls.
type recordingSink struct {
	calls []string
	Scene
}

func (r *recordingSink) ClearMarkers() {
	r.calls = append(r.calls, "clear")
	r.Scene.ClearMarkers()
}

func (r *recordingSink) AddMarker(m Marker) {
	r.calls = append(r.calls, "add")
	r.Scene.AddMarker(m)
}

func (r *recordingSink) FitBounds(p []LatLng, pad Point) {
	r.calls = append(r.calls, "fit")
	r.Scene.FitBounds(p, pad)
}

func (r *recordingSink) SetView(c LatLng, z int) {
	r.calls = append(r.calls, "view")
	r.Scene.SetView(c, z)
}

func (r *recordingSink) InvalidateSize(d time.Duration) {
	r.calls = append(r.calls, "invalidate")
	r.Scene.InvalidateSize(d)
}

func testRenderer() Renderer {
	return NewRenderer("hecho-completo.html", LatLng{Lat: -38.4, Lng: -63.6}, 5)
}

func TestRenderer_Render(t *testing.T) {
	events := []domain.Event{
		{ID: "1", Titulo: "Fuga", Categoria: "Industrial", FechaAcontecimiento: "2021-03-05", Lat: ptr(-34.6), Long: ptr(-58.4)},
		{ID: "2", Titulo: "Choque", Lat: ptr(-35.1), Long: ptr(-57.9)},
	}
	sink := &recordingSink{}

	summary := testRenderer().Render(events, sink)

	assert.Equal(t, Summary{Count: 2, Label: "2 resultados"}, summary)
	assert.Equal(t, []string{"clear", "add", "add", "fit", "invalidate"}, sink.calls)
	require.Len(t, sink.Markers, 2)
	assert.Equal(t, "1 - Fuga", sink.Markers[0].Title)
	assert.Equal(t, LatLng{Lat: -34.6, Lng: -58.4}, sink.Markers[0].Position)
	require.NotNil(t, sink.Fit)
	assert.Equal(t, Point{X: 20, Y: 20}, sink.Fit.Padding)
	assert.Equal(t, []LatLng{{Lat: -34.6, Lng: -58.4}, {Lat: -35.1, Lng: -57.9}}, sink.Fit.Bounds)
	assert.Nil(t, sink.View)
	assert.Equal(t, int64(200), sink.InvalidateAfterMS)
}

func TestRenderer_RenderEmptyFallsBack(t *testing.T) {
	sink := &recordingSink{}

	summary := testRenderer().Render(nil, sink)

	assert.Equal(t, Summary{Count: 0, Label: "0 resultados"}, summary)
	assert.Equal(t, []string{"clear", "view", "invalidate"}, sink.calls)
	assert.Empty(t, sink.Markers)
	require.NotNil(t, sink.View)
	assert.Equal(t, Viewport{Center: LatLng{Lat: -38.4, Lng: -63.6}, Zoom: 5}, *sink.View)
	assert.Nil(t, sink.Fit)
}

func TestRenderer_RenderClearsPreviousMarkers(t *testing.T) {
	scene := NewScene()
	r := testRenderer()

	r.Render([]domain.Event{{ID: "1", Lat: ptr(1), Long: ptr(2)}}, scene)
	r.Render([]domain.Event{{ID: "2", Lat: ptr(3), Long: ptr(4)}}, scene)

	require.Len(t, scene.Markers, 1)
	assert.Equal(t, "2", scene.Markers[0].ID)
}

func TestRenderer_SkipsUnplacedButCountsThem(t *testing.T) {
	scene := NewScene()

	summary := testRenderer().Render([]domain.Event{{ID: "1"}}, scene)

	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, "1 resultado", summary.Label)
	assert.Empty(t, scene.Markers)
	assert.NotNil(t, scene.View)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "0 resultados", ResultLabel(0))
	assert.Equal(t, "1 resultado", ResultLabel(1))
	assert.Equal(t, "2 resultados", ResultLabel(2))
	assert.Equal(t, "150 resultados", ResultLabel(150))
}

func TestRenderer_Popup(t *testing.T) {
	r := testRenderer()

	tests := []struct {
		name     string
		event    domain.Event
		contains []string
	}{
		{
			name:  "full event",
			event: domain.Event{ID: "17", Titulo: "Fuga", Categoria: "Industrial", FechaAcontecimiento: "2021-03-05", FechaCreacion: "2021-03-06"},
			contains: []string{
				"<strong>Fuga</strong>",
				"<small>Categoría:</small> Industrial",
				"<small>Fecha:</small> 2021-03-05",
				`href="hecho-completo.html?id=17"`,
				"Ver más...",
			},
		},
		{
			name:     "defaults",
			event:    domain.Event{ID: "1"},
			contains: []string{"<strong>(sin título)</strong>", "<small>Categoría:</small> -", "<small>Fecha:</small> -"},
		},
		{
			name:     "creation date fallback",
			event:    domain.Event{ID: "1", FechaCreacion: "2020-12-31"},
			contains: []string{"<small>Fecha:</small> 2020-12-31"},
		},
		{
			name:     "escaped title",
			event:    domain.Event{ID: "1", Titulo: `<script>alert("x")</script>`, Categoria: "A & B"},
			contains: []string{"&lt;script&gt;", "A &amp; B"},
		},
		{
			name:     "encoded id",
			event:    domain.Event{ID: "a b&c"},
			contains: []string{`href="hecho-completo.html?id=a%20b%26c"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := r.Popup(tt.event)
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			assert.NotContains(t, html, "<script>")
		})
	}
}

func TestDetailLink(t *testing.T) {
	tests := []struct {
		base string
		id   string
		want string
	}{
		{"hecho-completo.html", "17", "hecho-completo.html?id=17"},
		{"hecho-completo.html", "a b", "hecho-completo.html?id=a%20b"},
		{"hecho-completo.html", "x/y?z=1", "hecho-completo.html?id=x%2Fy%3Fz%3D1"},
		{"hecho-completo.html", "ñandú", "hecho-completo.html?id=%C3%B1and%C3%BA"},
		{"/detalle?lang=es", "5", "/detalle?lang=es&id=5"},
		{"hecho-completo.html", "", "hecho-completo.html?id="},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DetailLink(tt.base, tt.id))
		})
	}
}

func TestScene_JSON(t *testing.T) {
	scene := NewScene()
	testRenderer().Render(nil, scene)

	data, err := json.Marshal(scene)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	want := map[string]any{
		"markers":           []any{},
		"view":              map[string]any{"center": map[string]any{"lat": -38.4, "lng": -63.6}, "zoom": float64(5)},
		"invalidateAfterMs": float64(200),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scene JSON mismatch (-want +got):\n%s", diff)
	}
}
