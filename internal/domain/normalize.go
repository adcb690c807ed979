package domain

import (
	"math"
	"strconv"
	"strings"
)

// Normalizer maps raw records onto Event. The zero value uses the default
// candidate names and the local time zone.
type Normalizer struct {
	Candidates Candidates
	Dates      DateNormalizer
}

// Collection is the result of normalizing one raw document.
type Collection struct {
	Events   []Event
	KeyMap   KeyMap
	Received int
	Dropped  int // records without usable coordinates
}

func (n Normalizer) candidates() Candidates {
	if n.Candidates == nil {
		return DefaultCandidates()
	}
	return n.Candidates
}

// InferKeyMap resolves the key map from one sample record.
func (n Normalizer) InferKeyMap(sample RawRecord) KeyMap {
	return InferKeyMap(sample, n.candidates())
}

// NormalizeRecord builds one Event. It never fails: every field falls back
// to its empty or absent value on its own.
func (n Normalizer) NormalizeRecord(raw RawRecord, km KeyMap) Event {
	return Event{
		ID:                  km.Lookup(raw, FieldID).Text(),
		Titulo:              strings.TrimSpace(km.Lookup(raw, FieldTitulo).Text()),
		Descripcion:         strings.TrimSpace(km.Lookup(raw, FieldDescripcion).Text()),
		Categoria:           strings.TrimSpace(km.Lookup(raw, FieldCategoria).Text()),
		FechaAcontecimiento: n.Dates.Normalize(dateSource(raw, km, FieldFechaAcontecimiento)),
		FechaCreacion:       n.Dates.Normalize(dateSource(raw, km, FieldFechaCreacion)),
		Lat:                 ParseCoordinate(km.Lookup(raw, FieldLat)),
		Long:                ParseCoordinate(km.Lookup(raw, FieldLong)),
	}
}

// dateSource picks the dedicated date field when it carries a value and the
// generic "fecha" field otherwise. Blank text counts as no value.
func dateSource(raw RawRecord, km KeyMap, dedicated Field) Value {
	if v := km.Lookup(raw, dedicated); !v.Blank() {
		return v
	}
	return km.Lookup(raw, FieldFecha)
}

// NormalizeCollection infers the key map from the first record, normalizes
// every record with it, and drops events lacking a coordinate. Order is kept.
func (n Normalizer) NormalizeCollection(raws []RawRecord) Collection {
	out := Collection{Events: []Event{}, Received: len(raws)}
	if len(raws) == 0 {
		return out
	}

	out.KeyMap = n.InferKeyMap(raws[0])
	out.Events = make([]Event, 0, len(raws))
	for _, raw := range raws {
		e := n.NormalizeRecord(raw, out.KeyMap)
		if !e.HasCoordinates() {
			out.Dropped++
			continue
		}
		out.Events = append(out.Events, e)
	}
	return out
}

// NormalizeAll returns only the retained events of NormalizeCollection.
func (n Normalizer) NormalizeAll(raws []RawRecord) []Event {
	return n.NormalizeCollection(raws).Events
}

// NormalizeAll normalizes with the default Normalizer.
func NormalizeAll(raws []RawRecord) []Event {
	return Normalizer{}.NormalizeAll(raws)
}

// ParseCoordinate is a permissive numeric parser: it accepts "." or "," as
// decimal separator and returns nil for anything empty, unparsable or not
// finite.
func ParseCoordinate(v Value) *float64 {
	var f float64
	switch v.Kind {
	case KindNumber:
		f = v.Num
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return nil
		}
		s = strings.Replace(s, ",", ".", 1)
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	case KindMissing, KindNull, KindBool, KindComposite:
		return nil
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
