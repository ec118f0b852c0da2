package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Course is keyed by its client supplied code, which cannot change after
// creation.
var Course = Schema{
	Name:   "Course",
	Plural: "courses",
	Table:  "courses",
	Key:    fieldmap.Field{Wire: "code", Column: "code", Kind: fieldmap.Text, Required: true},
	Fields: fieldmap.Fields{
		{Wire: "name", Column: "name", Kind: fieldmap.Text, Required: true},
		{Wire: "credits", Column: "credits", Kind: fieldmap.Integer, Required: true},
		{Wire: "description", Column: "description", Kind: fieldmap.Text},
		{Wire: "departmentId", Column: "department_id", Kind: fieldmap.Integer},
		{Wire: "facultyId", Column: "faculty_id", Kind: fieldmap.Integer},
	},
	ConflictMessage: "Course code already exists",
}
