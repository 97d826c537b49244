// Package orderedjson provides a JSON object that keeps its keys in
// encounter order, so files written back to disk keep the layout a user or
// tool gave them.
package orderedjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when the decoded document is not a JSON object.
var ErrNotObject = errors.New("not a JSON object")

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Object is an insertion-ordered JSON object. The zero value is empty and
// ready to use.
type Object struct {
	fields []Field
}

// Parse decodes data into a new Object.
func Parse(data []byte) (*Object, error) {
	o := &Object{}
	if err := o.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return o, nil
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.fields) }

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the fields in order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

func (o *Object) index(key string) int {
	for i, f := range o.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	if i := o.index(key); i >= 0 {
		return o.fields[i].Value, true
	}
	return nil, false
}

// GetString decodes the value under key as a string. Non-string values
// report ok=false.
func (o *Object) GetString(key string) (string, bool) {
	raw, ok := o.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores value under key. An existing key keeps its position; a new key
// is appended.
func (o *Object) Set(key string, value json.RawMessage) {
	if i := o.index(key); i >= 0 {
		o.fields[i].Value = value
		return
	}
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// SetString stores s under key as a JSON string.
func (o *Object) SetString(key, s string) {
	o.Set(key, encodeString(s))
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.index(key)
	if i < 0 {
		return false
	}
	o.fields = append(o.fields[:i], o.fields[i+1:]...)
	return true
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := &Object{fields: make([]Field, len(o.fields))}
	for i, f := range o.fields {
		c.fields[i] = Field{Key: f.Key, Value: append(json.RawMessage(nil), f.Value...)}
	}
	return c
}

// UnmarshalJSON implements json.Unmarshaler. Duplicate keys keep the
// position of their first occurrence and the value of their last.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	o.fields = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		o.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err == nil {
		return errors.New("trailing data after object")
	}
	return nil
}

// MarshalJSON implements json.Marshaler with compact output.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(encodeString(f.Key))
		buf.WriteByte(':')
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("compacting %q: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indent renders the object with two-space indentation and no trailing
// newline. An empty object renders as {}.
func (o *Object) Indent() ([]byte, error) {
	compact, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeString(s string) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
