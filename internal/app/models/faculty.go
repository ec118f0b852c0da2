package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Faculty is a teaching staff member, optionally attached to a department.
var Faculty = Schema{
	Name:         "Faculty member",
	Plural:       "faculty",
	Table:        "faculty",
	Key:          generatedID(),
	KeyGenerated: true,
	Fields: fieldmap.Fields{
		{Wire: "firstName", Column: "first_name", Kind: fieldmap.Text, Required: true},
		{Wire: "lastName", Column: "last_name", Kind: fieldmap.Text, Required: true},
		{Wire: "email", Column: "email", Kind: fieldmap.Text, Required: true},
		{Wire: "designation", Column: "designation", Kind: fieldmap.Text},
		{Wire: "departmentId", Column: "department_id", Kind: fieldmap.Integer},
	},
	ConflictMessage: "Email already exists",
}
