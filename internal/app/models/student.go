package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Student is an enrolled student. Email is unique across students.
var Student = Schema{
	Name:         "Student",
	Plural:       "students",
	Table:        "students",
	Key:          generatedID(),
	KeyGenerated: true,
	Fields: fieldmap.Fields{
		{Wire: "firstName", Column: "first_name", Kind: fieldmap.Text, Required: true},
		{Wire: "lastName", Column: "last_name", Kind: fieldmap.Text, Required: true},
		{Wire: "email", Column: "email", Kind: fieldmap.Text, Required: true},
		{Wire: "phone", Column: "phone", Kind: fieldmap.Text},
		{Wire: "departmentId", Column: "department_id", Kind: fieldmap.Integer},
		{Wire: "enrollmentYear", Column: "enrollment_year", Kind: fieldmap.Integer},
	},
	ConflictMessage: "Email already exists",
}
