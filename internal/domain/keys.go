package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field names a canonical Event attribute that is looked up in raw records.
type Field string

const (
	FieldID                  Field = "id"
	FieldTitulo              Field = "titulo"
	FieldDescripcion         Field = "descripcion"
	FieldCategoria           Field = "categoria"
	FieldFechaAcontecimiento Field = "fechaAcontecimiento"
	FieldFechaCreacion       Field = "fechaCreacion"
	FieldFecha               Field = "fecha" // generic fallback for both dates
	FieldLat                 Field = "lat"
	FieldLong                Field = "long"
)

// Fields lists every canonical field in resolution order.
var Fields = []Field{
	FieldID,
	FieldTitulo,
	FieldDescripcion,
	FieldCategoria,
	FieldFechaAcontecimiento,
	FieldFechaCreacion,
	FieldFecha,
	FieldLat,
	FieldLong,
}

func knownField(f Field) bool {
	for _, k := range Fields {
		if k == f {
			return true
		}
	}
	return false
}

// Candidates maps each canonical field to the raw spellings accepted for it,
// in priority order.
type Candidates map[Field][]string

// DefaultCandidates returns a fresh copy of the built-in candidate lists.
func DefaultCandidates() Candidates {
	return Candidates{
		FieldID:          {"id", "codigo", "identificador"},
		FieldTitulo:      {"titulo", "título", "title", "nombre"},
		FieldDescripcion: {"descripcion", "descripción", "description", "detalle", "resumen"},
		FieldCategoria:   {"categoria", "categoría", "category", "tipo"},
		FieldFechaAcontecimiento: {
			"fecha acontecimiento", "fecha_del_hecho", "fecha del hecho", "fechasuceso",
			"fechaevento", "fecha evento", "acontecimiento", "f. acontecimiento",
		},
		FieldFechaCreacion: {
			"fecha carga", "fechacarga", "fecha creacion", "fecha creación",
			"fecha_de_creacion", "fecha_de_creación", "created_at", "create_date",
		},
		FieldFecha: {"fecha", "date", "fecha evento", "fecha suceso"},
		FieldLat:   {"lat", "latitud", "latitude"},
		FieldLong:  {"long", "lon", "lng", "longitud", "longitude"},
	}
}

// Extend returns a copy of c with extra spellings appended after the existing
// ones, so built-in names keep their priority. Field names in extra must be
// canonical.
func (c Candidates) Extend(extra map[string][]string) (Candidates, error) {
	out := make(Candidates, len(c))
	for f, names := range c {
		out[f] = append([]string(nil), names...)
	}

	fields := make([]string, 0, len(extra))
	for name := range extra {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	for _, name := range fields {
		f := Field(name)
		if !knownField(f) {
			return nil, fmt.Errorf("unknown canonical field %q", name)
		}
		out[f] = append(out[f], extra[name]...)
	}
	return out, nil
}

// NormalizeKey folds a header into its lookup form: diacritics stripped,
// lower-cased, and everything outside [a-z0-9_] removed.
// "Fecha del Hecho" -> "fechadelhecho", "Latitúd" -> "latitud".
func NormalizeKey(k string) string {
	// Chains carry state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, k)
	if err != nil {
		folded = k
	}
	folded = strings.ToLower(folded)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, folded)
}

// keyIndex maps normalized keys of a sample record to the original key.
// When two keys fold to the same form the later one wins.
type keyIndex map[string]string

func indexKeys(sample RawRecord) keyIndex {
	idx := make(keyIndex, sample.Len())
	for _, k := range sample.keys {
		idx[NormalizeKey(k)] = k
	}
	return idx
}

func (idx keyIndex) resolve(candidates []string) (string, bool) {
	for _, c := range candidates {
		want := NormalizeKey(c)
		if want == "" {
			continue
		}
		if k, ok := idx[want]; ok && k != "" {
			return k, true
		}
	}
	return "", false
}

// Resolve returns the key of sample that supplies the first matching
// candidate name. Candidate order decides ties.
func Resolve(sample RawRecord, candidates []string) (string, bool) {
	return indexKeys(sample).resolve(candidates)
}

// KeyMap records which raw key supplies each canonical field for one
// collection. The zero value resolves nothing.
type KeyMap struct {
	keys map[Field]string
}

// InferKeyMap resolves every canonical field against one sample record.
func InferKeyMap(sample RawRecord, c Candidates) KeyMap {
	idx := indexKeys(sample)
	km := KeyMap{keys: make(map[Field]string, len(Fields))}
	for _, f := range Fields {
		if k, ok := idx.resolve(c[f]); ok {
			km.keys[f] = k
		}
	}
	return km
}

// Key returns the raw key for f, if one was resolved.
func (m KeyMap) Key(f Field) (string, bool) {
	k, ok := m.keys[f]
	return k, ok
}

// Lookup reads f from raw through the map. Unresolved fields are Missing.
func (m KeyMap) Lookup(raw RawRecord, f Field) Value {
	k, ok := m.keys[f]
	if !ok {
		return Missing
	}
	return raw.Get(k)
}

// Unresolved lists the canonical fields no candidate matched, in field order.
func (m KeyMap) Unresolved() []Field {
	var out []Field
	for _, f := range Fields {
		if _, ok := m.keys[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
