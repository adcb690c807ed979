package view

import "time"

// Fit asks the map to show every point with the given padding.
type Fit struct {
	Bounds  []LatLng `json:"bounds"`
	Padding Point    `json:"padding"`
}

// Viewport is an explicit center and zoom.
type Viewport struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Scene is a MapSink that records the resulting map state. Exactly one of
// Fit and View is set after a render.
type Scene struct {
	Markers           []Marker  `json:"markers"`
	Fit               *Fit      `json:"fit,omitempty"`
	View              *Viewport `json:"view,omitempty"`
	InvalidateAfterMS int64     `json:"invalidateAfterMs"`
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{Markers: []Marker{}}
}

func (s *Scene) ClearMarkers() {
	s.Markers = []Marker{}
}

func (s *Scene) AddMarker(m Marker) {
	s.Markers = append(s.Markers, m)
}

func (s *Scene) FitBounds(points []LatLng, padding Point) {
	s.Fit = &Fit{Bounds: append([]LatLng(nil), points...), Padding: padding}
	s.View = nil
}

func (s *Scene) SetView(center LatLng, zoom int) {
	s.View = &Viewport{Center: center, Zoom: zoom}
	s.Fit = nil
}

func (s *Scene) InvalidateSize(after time.Duration) {
	s.InvalidateAfterMS = after.Milliseconds()
}
