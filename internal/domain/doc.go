// Package domain normalizes heterogeneous incident records ("hechos") into a
// canonical Event and filters them.
//
// # Data Source
//
// Records come from a JSON document published by whoever curates the
// dataset: either a top-level array or an object with a "data" array. The
// source is a concatenation of spreadsheets and exports, so field names and
// date encodings vary between datasets and are never declared up front.
//
// # Key Resolution
//
// Header spellings are folded before matching:
//
//	"Fecha del Hecho"  ->  "fechadelhecho"
//	"Latitúd"          ->  "latitud"
//	"created_at"       ->  "created_at"   (underscores survive)
//
// Folding strips diacritics, lower-cases, and drops everything outside
// [a-z0-9_]. Each canonical field has an ordered list of candidate names
// (see [DefaultCandidates]); the first candidate found in the sample record
// wins. The key map is inferred once per collection from its first record
// and reused for every record, so a dataset is assumed to use one naming
// scheme throughout.
//
// # Date Encodings
//
// Three encodings are recognized, in order:
//
//	2021-03-05           canonical, returned as is when it names a real day
//	5/3/2021, 05-03-2021 day first, rebuilt from its fields
//	anything else        flexible parser (RFC 3339, "March 5, 2021", ...)
//
// Calendar fields are always taken directly, never by formatting an instant
// in another zone, so a date cannot shift by a day. Instants from the
// flexible parser are read in the normalizer's location.
//
// The two event dates, fechaAcontecimiento (when it happened) and
// fechaCreacion (when it was recorded), each fall back to a generic "fecha"
// column when their own column is missing or blank.
//
// # Coordinates
//
// Latitude and longitude accept numbers or text with "." or "," as decimal
// separator ("-34,6"). A record without both coordinates cannot be placed on
// the map and is dropped from the collection.
//
// # Filtering
//
// [Apply] combines category equality, two inclusive date ranges compared
// lexically on the canonical form, and a case-insensitive substring search
// over title and description. Empty filter fields are inactive.
package domain
