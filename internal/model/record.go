package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Wire keys shared by every record kind.
const (
	KeyID       = "_id"
	KeyOwnerID  = "ownerId"
	KeyFileLink = "fileLink"
)

// Record is one stored row of a kind. Typed fields live in Fields; on the wire
// they are flattened next to the identity keys.
type Record struct {
	ID        string
	OwnerID   string
	FileLink  *string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy whose Fields map and list values can be changed without
// touching r.
func (r *Record) Clone() *Record {
	out := *r
	if r.FileLink != nil {
		link := *r.FileLink
		out.FileLink = &link
	}
	out.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out.Fields[k] = v
	}
	return &out
}

// Field returns the named field value, or nil.
func (r *Record) Field(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// MarshalJSON flattens the record into one object.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+5)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[KeyID] = r.ID
	out[KeyOwnerID] = r.OwnerID
	if r.FileLink != nil {
		out[KeyFileLink] = *r.FileLink
	} else {
		out[KeyFileLink] = nil
	}
	if !r.CreatedAt.IsZero() {
		out["createdAt"] = r.CreatedAt
	}
	if !r.UpdatedAt.IsZero() {
		out["updatedAt"] = r.UpdatedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flattened object back into identity keys and fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	fields, err := DecodeFields(data)
	if err != nil {
		return err
	}
	*r = Record{}
	if id, ok := fields[KeyID].(string); ok {
		r.ID = id
	}
	if owner, ok := fields[KeyOwnerID].(string); ok {
		r.OwnerID = owner
	}
	if link, ok := fields[KeyFileLink].(string); ok && link != "" {
		r.FileLink = &link
	}
	for _, key := range []string{"createdAt", "updatedAt"} {
		s, ok := fields[key].(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		if key == "createdAt" {
			r.CreatedAt = ts
		} else {
			r.UpdatedAt = ts
		}
	}
	for _, key := range []string{KeyID, KeyOwnerID, KeyFileLink, "createdAt", "updatedAt"} {
		delete(fields, key)
	}
	r.Fields = fields
	return nil
}

// DecodeFields decodes a JSON object into a field map. Numbers become float64
// and arrays of strings become []string.
func DecodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	for k, v := range raw {
		raw[k] = normalize(v)
	}
	return raw, nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		list := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return val
			}
			list = append(list, s)
		}
		return list
	default:
		return v
	}
}
