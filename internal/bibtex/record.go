// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Well-known field names.
const (
	FieldCiteKey      = "cite_key"
	FieldDocumentType = "document_type"

	// fieldType is the body field that feeds document_type.
	fieldType = "type"
)

// PriorityFields are extracted before the catch-all scan, in this order.
var PriorityFields = []string{
	"title", "author", "year", "booktitle", "journal", "publisher",
	"address", "pages", "doi", "url", "abstract", "keywords",
	FieldDocumentType,
}

// Field is one name/value pair of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered set of non-empty fields. The zero value is empty
// and ready to use.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in the given order.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

// Has reports whether name is present.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Set stores value under name. A new name is appended; an existing one
// keeps its position. Blank values are ignored so a Record never holds an
// empty field.
func (r *Record) Set(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Fields returns a copy of the fields in record order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// CiteKey returns the record's cite key.
func (r Record) CiteKey() string {
	v, _ := r.Get(FieldCiteKey)
	return v
}

// Map returns the fields as an unordered map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as a JSON object keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Assemble turns a raw entry into a record. The cite key comes first, then
// the priority fields that were found, in priority order, then any other
// fields in the order the catch-all scan met them.
//
// document_type is the entry type, replaced by a body field named "type"
// when that has a value. A document_type field in the body only counts
// when the entry type is empty. "type" itself is never kept. Assemble
// never fails: an entry with no readable fields still yields its cite key
// and document type.
func Assemble(e RawEntry, priority []string) Record {
	found := make(map[string]string, len(priority)+1)
	for _, name := range priority {
		if v, ok := ExtractField(e.Body, name); ok {
			found[name] = v
		}
	}

	docType := strings.TrimSpace(e.Type)
	if v, ok := found[FieldDocumentType]; ok && docType == "" {
		docType = v
	}
	if v, ok := typeField(e.Body); ok {
		docType = v
	}

	var rec Record
	rec.Set(FieldCiteKey, e.CiteKey)

	isPriority := make(map[string]bool, len(priority))
	for _, name := range priority {
		isPriority[name] = true
		if name == FieldDocumentType {
			rec.Set(FieldDocumentType, docType)
			continue
		}
		if v, ok := found[name]; ok {
			rec.Set(name, v)
		}
	}
	if !isPriority[FieldDocumentType] {
		rec.Set(FieldDocumentType, docType)
	}

	for _, m := range scanFields(e.Body) {
		key := strings.ToLower(m.name)
		if key == fieldType || isPriority[key] || rec.Has(key) {
			continue
		}
		if v, ok := Normalize(m.raw); ok {
			rec.Set(key, v)
		}
	}
	return rec
}

// typeField returns the normalized value of the first body field whose
// name is exactly "type". The substring search of ExtractField would also
// hit the tail of "document_type".
func typeField(body string) (string, bool) {
	for _, m := range scanFields(body) {
		if strings.EqualFold(m.name, fieldType) {
			return Normalize(m.raw)
		}
	}
	return "", false
}

// Parse splits a corpus and assembles every entry with PriorityFields.
// It accepts any input and returns an empty slice when no entry is found.
func Parse(corpus string) []Record {
	entries := Split(corpus)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Assemble(e, PriorityFields))
	}
	return records
}
