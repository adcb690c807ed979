package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnexpectedShape is returned by DecodeDocument when the document is
// neither an array of records nor an object carrying a "data" array.
var ErrUnexpectedShape = errors.New("unexpected document shape")

// Kind tags the scalar carried by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindComposite // nested object or array, kept as compact JSON text
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Value is a single field of a RawRecord.
type Value struct {
	Kind Kind
	Str  string // KindString text, or KindComposite JSON
	Num  float64
	Bool bool
}

// Missing is the Value returned for keys that are not present.
var Missing = Value{Kind: KindMissing}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value            { return Value{Kind: KindNull} }

// Text coerces the value to text. Null and missing values become "".
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindComposite:
		return v.Str
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindMissing, KindNull:
		return ""
	default:
		return ""
	}
}

// Blank reports whether the value carries nothing usable: missing, null, or
// whitespace-only text.
func (v Value) Blank() bool {
	switch v.Kind {
	case KindMissing, KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.Str) == ""
	case KindNumber, KindBool, KindComposite:
		return false
	default:
		return true
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// RawRecord is one untyped source record. Key order follows the source
// document because key resolution depends on it.
type RawRecord struct {
	keys   []string
	fields map[string]Value
}

// NewRawRecord builds a record from alternating key/value pairs, mostly for tests.
func NewRawRecord(pairs ...any) RawRecord {
	var r RawRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(k, valueOf(pairs[i+1]))
	}
	return r
}

func valueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case int:
		return NumberValue(float64(t))
	case bool:
		return BoolValue(t)
	default:
		return StringValue(fmt.Sprint(t))
	}
}

// Set stores a field. Re-setting an existing key keeps its original position.
func (r *RawRecord) Set(key string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value under key, or Missing.
func (r RawRecord) Get(key string) Value {
	v, ok := r.fields[key]
	if !ok {
		return Missing
	}
	return v
}

// Keys returns the record's keys in source order.
func (r RawRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r RawRecord) Len() int { return len(r.keys) }

// UnmarshalJSON decodes a JSON object keeping key order. Any non-object
// element decodes to an empty record.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	*r = RawRecord{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode record key: unexpected token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode record field %q: %w", key, err)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("decode record field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	return nil
}

// MarshalJSON writes the record back as an object in source order.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.fields[k].marshal()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v Value) marshal() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindComposite:
		return []byte(v.Str), nil
	case KindMissing, KindNull:
		return []byte("null"), nil
	default:
		return []byte("null"), nil
	}
}

func decodeValue(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NullValue(), nil
	}
	switch trimmed[0] {
	case 'n':
		return NullValue(), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindComposite, Str: buf.String()}, nil
	default:
		// Out-of-range numbers keep the ±Inf ParseFloat returns; every
		// consumer treats non-finite values as absent.
		n, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, err
		}
		return NumberValue(n), nil
	}
}

// DecodeDocument parses a raw document: either a top-level array of records
// or an object whose "data" field is an array of records.
func DecodeDocument(data []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode document: %w", ErrUnexpectedShape)
	}

	switch trimmed[0] {
	case '[':
		var records []RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		return nonNil(records), nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		inner := bytes.TrimSpace(envelope["data"])
		if len(inner) == 0 || inner[0] != '[' {
			return nil, fmt.Errorf("decode document: %w", ErrUnexpectedShape)
		}
		var records []RawRecord
		if err := json.Unmarshal(inner, &records); err != nil {
			return nil, fmt.Errorf("decode document data: %w", err)
		}
		return nonNil(records), nil
	default:
		if !json.Valid(trimmed) {
			return nil, errors.New("decode document: invalid JSON")
		}
		return nil, fmt.Errorf("decode document: %w", ErrUnexpectedShape)
	}
}

func nonNil(records []RawRecord) []RawRecord {
	if records == nil {
		return []RawRecord{}
	}
	return records
}
