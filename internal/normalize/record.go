// Package normalize turns the backend's inconsistent payloads into the
// stable DTOs in package model. Each resource has its own parser with an
// explicit alias list per field; nothing here returns an error for a
// missing or malformed envelope.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// isoLayout matches JavaScript's Date.prototype.toISOString.
	isoLayout = "2006-01-02T15:04:05.000Z"
	// maxDateMillis is 8.64e15, the largest time value a JavaScript Date holds.
	maxDateMillis = 8.64e15
)

// Record is one decoded JSON object.
type Record map[string]any

// Decode parses raw with json.Number preserved. Invalid JSON yields nil.
func Decode(raw []byte) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// DecodeRecord parses raw and returns it if it is a JSON object.
func DecodeRecord(raw []byte) (Record, bool) {
	return asRecord(Decode(raw))
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Record(m), true
	case Record:
		return m, true
	default:
		return nil, false
	}
}

// Envelope unwraps the list stored under key. Anything other than an
// object holding an array at key yields an empty, non-nil slice; array
// elements that are not objects are dropped.
func Envelope(raw []byte, key string) []Record {
	out := []Record{}
	top, ok := DecodeRecord(raw)
	if !ok {
		return out
	}
	items, ok := top[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if rec, ok := asRecord(item); ok {
			out = append(out, rec)
		}
	}
	return out
}

// lookup returns the value of the first alias present with a non-null value.
func (r Record) lookup(aliases []string) (any, bool) {
	for _, k := range aliases {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Record returns the first alias holding an object.
func (r Record) Record(aliases ...string) (Record, bool) {
	for _, k := range aliases {
		if rec, ok := asRecord(r[k]); ok {
			return rec, true
		}
	}
	return nil, false
}

// String returns the first alias as text; numbers are formatted.
func (r Record) String(aliases []string) string {
	v, ok := r.lookup(aliases)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Decimal returns the first alias as a decimal, 0 when absent or unparsable.
func (r Record) Decimal(aliases []string) decimal.Decimal {
	v, ok := r.lookup(aliases)
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	}
	return decimal.Zero
}

// Int returns the first alias as an integer, 0 when absent or unparsable.
func (r Record) Int(aliases []string) int64 {
	v, ok := r.lookup(aliases)
	if !ok {
		return 0
	}
	if f, ok := toFloat(v); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return int64(f)
	}
	return 0
}

// Bool returns the first alias as a bool, or def when no alias is present.
func (r Record) Bool(def bool, aliases []string) bool {
	v, ok := r.lookup(aliases)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no", "":
			return false
		}
		return def
	case json.Number, float64:
		f, _ := toFloat(b)
		return f != 0
	default:
		return def
	}
}

// Strings returns the first alias as a list of strings, never nil.
func (r Record) Strings(aliases []string) []string {
	out := []string{}
	v, ok := r.lookup(aliases)
	if !ok {
		return out
	}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Timestamp returns the first alias normalized with Timestamp.
func (r Record) Timestamp(aliases []string) string {
	v, ok := r.lookup(aliases)
	if !ok {
		return ""
	}
	s, _ := Timestamp(v)
	return s
}

// Timestamp normalizes an ISO-8601 string or a structured
// {seconds, nanos} value into an ISO-8601 string. seconds may be a
// number, a numeric string, or a wrapped 64-bit {low, high, unsigned};
// only the low word is used and nanos are ignored. Non-positive results
// report false rather than producing the epoch, and so do results past
// the last representable JavaScript date.
func Timestamp(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	}

	rec, ok := asRecord(v)
	if !ok {
		return "", false
	}
	secs, ok := rec["seconds"]
	if !ok || secs == nil {
		return "", false
	}
	if wrapped, ok := asRecord(secs); ok {
		secs = wrapped["low"]
	}
	f, ok := toFloat(secs)
	if !ok {
		return "", false
	}
	ms := f * 1000
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 || ms > maxDateMillis {
		return "", false
	}
	ts := time.UnixMilli(int64(ms)).UTC()
	if ts.Year() > 9999 {
		// Expanded year form, as Date.prototype.toISOString writes it.
		return fmt.Sprintf("+%06d", ts.Year()) + ts.Format("-01-02T15:04:05.000Z"), true
	}
	return ts.Format(isoLayout), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
