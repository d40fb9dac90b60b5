package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Payload is the structured field set describing a listing. Keys are always
// lowercase and preserve insertion order, so serialized payloads keep the
// column order of the source row. Values are strings, numbers, booleans,
// string lists, or nested maps (location, shipping).
//
// A Payload is never shared between transformation steps: every merge and
// preparation works on a Clone, so platform-specific mutation cannot corrupt
// the base payload.
type Payload struct {
	keys   []string
	values map[string]any
}

// NewPayload creates an empty payload.
func NewPayload() *Payload {
	return &Payload{values: make(map[string]any)}
}

// Len returns the number of fields.
func (p *Payload) Len() int {
	return len(p.keys)
}

// Keys returns the field names in insertion order. The returned slice is a
// copy and safe to mutate.
func (p *Payload) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Get returns the value for a field name.
func (p *Payload) Get(key string) (any, bool) {
	v, ok := p.values[strings.ToLower(key)]
	return v, ok
}

// GetString returns the field value rendered as a string, or "" if absent.
// Non-string values are stringified the same way serialization would.
func (p *Payload) GetString(key string) string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

// Set stores a value under a field name. Keys are lowercased on write.
func (p *Payload) Set(key string, value any) {
	key = strings.ToLower(key)
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// SetDefault stores a value only when the field is absent.
func (p *Payload) SetDefault(key string, value any) {
	if _, ok := p.Get(key); !ok {
		p.Set(key, value)
	}
}

// Delete removes a field.
func (p *Payload) Delete(key string) {
	key = strings.ToLower(key)
	if _, exists := p.values[key]; !exists {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Merge layers another payload on top of this one, other winning on key
// conflicts. Values are taken as-is; pass a clone if the other payload
// remains in use.
func (p *Payload) Merge(other *Payload) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		p.Set(key, other.values[key])
	}
}

// Clone returns an independent copy. Nested maps and slices are copied one
// level deep, which covers every value shape a payload can hold.
func (p *Payload) Clone() *Payload {
	clone := &Payload{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]any, len(p.values)),
	}
	for key, value := range p.values {
		clone.values[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, inner := range v {
			m[k] = cloneValue(inner)
		}
		return m
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// Images returns the image path list, tolerating both []string and []any
// shapes. A missing or malformed value yields an empty list.
func (p *Payload) Images() []string {
	v, ok := p.Get("images")
	if !ok {
		return []string{}
	}
	switch images := v.(type) {
	case []string:
		return append([]string(nil), images...)
	case []any:
		out := make([]string, 0, len(images))
		for _, item := range images {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{images}
	default:
		return []string{}
	}
}

// Location returns the nested location map, or an empty map if absent.
func (p *Payload) Location() map[string]any {
	return p.nested("location")
}

// Shipping returns the nested shipping map, or an empty map if absent.
func (p *Payload) Shipping() map[string]any {
	return p.nested("shipping")
}

func (p *Payload) nested(key string) map[string]any {
	v, ok := p.Get(key)
	if !ok {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// MarshalJSON serializes the payload as a JSON object in field order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
