// Package models declares the entities served by the API. Each entity is a
// Schema: its table, key and the explicit wire/column table of its fields.
package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Schema describes one resource.
type Schema struct {
	// Name is the display name used in client messages ("Student not found").
	Name string
	// Plural is the route segment under /api.
	Plural string
	Table  string
	Key    fieldmap.Field
	// KeyGenerated is set when the store assigns the key on insert.
	KeyGenerated bool
	// Fields lists every non-key column. The key is never updatable.
	Fields fieldmap.Fields
	// ConflictMessage is returned when a write violates a unique constraint.
	ConflictMessage string
}

// NotFoundMessage is the 404 message of the resource.
func (s Schema) NotFoundMessage() string {
	return s.Name + " not found"
}

// DeletedMessage is the message returned after a successful delete.
func (s Schema) DeletedMessage() string {
	return s.Name + " deleted successfully"
}

// InsertFields returns the fields bound on create, including a client
// supplied key.
func (s Schema) InsertFields() fieldmap.Fields {
	fields := s.Fields.Writable()
	if !s.KeyGenerated {
		fields = append(fieldmap.Fields{s.Key}, fields...)
	}
	return fields
}

// UpdateFields returns the fields written on update.
func (s Schema) UpdateFields() fieldmap.Fields {
	return s.Fields.Writable()
}

// Required returns the wire names that must be present on create.
func (s Schema) Required() []string {
	return s.InsertFields().Required()
}

// All returns the schemas in route registration order.
func All() []Schema {
	return []Schema{Department, Student, Faculty, Course, Enrollment}
}

func generatedID() fieldmap.Field {
	return fieldmap.Field{Wire: "id", Column: "id", Kind: fieldmap.Integer, ReadOnly: true}
}
