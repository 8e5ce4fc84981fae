// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

// Schema computes the column order for a set of records: the cite key,
// then the priority fields present in at least one record in priority
// order, then every other field name in the order it is first seen,
// scanning records in sequence and each record in its own field order.
// It only reads the records.
func Schema(records []Record) []string {
	return SchemaWith(records, PriorityFields)
}

// SchemaWith is Schema with an explicit priority list.
func SchemaWith(records []Record, priority []string) []string {
	present := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.fields {
			present[f.Name] = true
		}
	}

	var schema []string
	placed := make(map[string]bool)
	place := func(name string) {
		if present[name] && !placed[name] {
			placed[name] = true
			schema = append(schema, name)
		}
	}

	place(FieldCiteKey)
	for _, name := range priority {
		place(name)
	}
	for _, r := range records {
		for _, f := range r.fields {
			place(f.Name)
		}
	}
	return schema
}
