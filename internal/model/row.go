package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Row is a JSON object that remembers the order its keys were set or decoded
// in. Report snapshots are stored as rows so exported columns keep the order
// they were saved with.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set stores v under key, appending key if it is new.
func (r *Row) Set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key.
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in order.
func (r *Row) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len is the number of keys.
func (r *Row) Len() int { return len(r.keys) }

// Clone copies the row. List values are copied too.
func (r *Row) Clone() *Row {
	out := NewRow()
	for _, k := range r.keys {
		v := r.values[k]
		switch list := v.(type) {
		case []string:
			v = append([]string(nil), list...)
		case []any:
			v = append([]any(nil), list...)
		}
		out.Set(k, v)
	}
	return out
}

// MarshalJSON writes the keys in order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object token by token to keep key order. Numbers are
// kept as json.Number so they render exactly as stored.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("row: expected object")
	}
	*r = Row{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("row: expected string key")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("row %s: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
