package models

import "github.com/yigit/unirecords/internal/pkg/fieldmap"

// Enrollment links a student to a course. enrolledAt is stamped by the store.
// A student may hold several enrollments in the same course.
var Enrollment = Schema{
	Name:         "Enrollment",
	Plural:       "enrollments",
	Table:        "enrollments",
	Key:          generatedID(),
	KeyGenerated: true,
	Fields: fieldmap.Fields{
		{Wire: "studentId", Column: "student_id", Kind: fieldmap.Integer, Required: true},
		{Wire: "courseCode", Column: "course_code", Kind: fieldmap.Text, Required: true},
		{Wire: "grade", Column: "grade", Kind: fieldmap.Text},
		{Wire: "enrolledAt", Column: "enrolled_at", Kind: fieldmap.Timestamp, ReadOnly: true},
	},
}
