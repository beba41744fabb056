package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single header/value pair of an uploaded row.
type Field struct {
	// Name is the column header.
	Name string
	// Value is int64, float64, string, or nil for a missing cell.
	Value interface{}
}

// Record represents one uploaded spreadsheet row. Fields keep the column
// order of the sheet, and the JSON form is an object in that order.
type Record struct {
	Fields []Field
}

// Get returns the value of the named field.
func (r Record) Get(name string) (interface{}, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON writes the record as an object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object preserving key order. Integral numbers
// decode to int64, other numbers to float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.Fields = r.Fields[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Fields = append(r.Fields, Field{Name: name, Value: fromJSONValue(raw)})
	}
	_, err = dec.Token()
	return err
}

func fromJSONValue(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// UploadResponse is the JSON body returned by the upload endpoint.
type UploadResponse struct {
	// Data holds the first worksheet rows.
	Data []Record `json:"data"`
}

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
