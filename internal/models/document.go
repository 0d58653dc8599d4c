package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Submitted records (users, tests, appointments, reports, banners) are kept
// as Documents so every field the client sent is stored and returned as-is.
// The typed structs in this package describe the fields the API itself reads
// and are used to build seed data.

// ToDocument converts a typed record into a Document using its bson tags.
func ToDocument(v interface{}) (Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// StringField returns d[key] when it holds a string.
func StringField(d Document, key string) string {
	s, _ := d[key].(string)
	return s
}

// NumberField returns d[key] as a float64 when it holds any numeric value,
// including a json.Number decoded from a request body.
func NumberField(d Document, key string) (float64, bool) {
	switch v := d[key].(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Increment adds delta to the numeric field key the way the store's $inc
// does: integers stay integers, a missing field starts at zero. It reports
// false when the field holds a non-numeric value.
func Increment(d Document, key string, delta int64) bool {
	switch v := d[key].(type) {
	case nil:
		d[key] = delta
	case int:
		d[key] = v + int(delta)
	case int32:
		d[key] = v + int32(delta)
	case int64:
		d[key] = v + delta
	case float64:
		d[key] = v + float64(delta)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			d[key] = n + delta
			return true
		}
		f, err := v.Float64()
		if err != nil {
			return false
		}
		d[key] = f + float64(delta)
	default:
		return false
	}
	return true
}

// Clone returns a shallow copy of d.
func Clone(d Document) Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
