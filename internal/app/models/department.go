package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Department is an academic department. Its name is unique.
var Department = Schema{
	Name:         "Department",
	Plural:       "departments",
	Table:        "departments",
	Key:          generatedID(),
	KeyGenerated: true,
	Fields: fieldmap.Fields{
		{Wire: "name", Column: "name", Kind: fieldmap.Text, Required: true},
		{Wire: "head", Column: "head", Kind: fieldmap.Text},
	},
	ConflictMessage: "Department name already exists",
}
