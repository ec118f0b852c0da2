package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/services"
	"github.com/yigit/unirecords/internal/pkg/fieldmap"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// Result counts the records created and the ones that already existed.
type Result struct {
	Created  int
	Existing int
}

type seeder struct {
	session *querylog.Session
	result  Result
}

// ensure returns the stored record matching input on matchOn, creating it
// when there is none.
func (s *seeder) ensure(ctx context.Context, svc *services.ResourceService, input map[string]any, matchOn ...string) (fieldmap.Record, error) {
	records, err := svc.List(ctx, s.session)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", svc.Schema().Plural, err)
	}
	for _, existing := range records {
		if matches(existing, input, matchOn) {
			s.result.Existing++
			return existing, nil
		}
	}

	record, err := svc.Create(ctx, s.session, input)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", svc.Schema().Name, err)
	}
	s.result.Created++
	return record, nil
}

func matches(record fieldmap.Record, input map[string]any, keys []string) bool {
	for _, key := range keys {
		if record[key] != input[key] {
			return false
		}
	}
	return true
}

// CreateDefaultData creates demo departments, faculty, students, courses and
// enrollments if they don't exist. Running it again creates nothing.
func CreateDefaultData(ctx context.Context, tracer *querylog.Tracer, svcs *services.Services, lgr zerolog.Logger) (Result, error) {
	session := tracer.Session()
	defer session.Close()

	s := &seeder{session: session}
	lgr.Info().Msg("Checking/Creating default data...")

	departments := map[string]fieldmap.Record{}
	for _, d := range []map[string]any{
		{"name": "Computer Science", "head": "Dr. Ada Lovelace"},
		{"name": "Mathematics", "head": "Dr. Emmy Noether"},
		{"name": "Physics", "head": nil},
	} {
		record, err := s.ensure(ctx, svcs.DepartmentService, d, "name")
		if err != nil {
			return s.result, err
		}
		departments[d["name"].(string)] = record
	}

	faculty := map[string]fieldmap.Record{}
	for _, f := range []map[string]any{
		{"firstName": "Grace", "lastName": "Hopper", "email": "grace.hopper@university.edu", "designation": "Professor", "departmentId": departments["Computer Science"]["id"]},
		{"firstName": "Carl", "lastName": "Gauss", "email": "carl.gauss@university.edu", "designation": "Associate Professor", "departmentId": departments["Mathematics"]["id"]},
	} {
		record, err := s.ensure(ctx, svcs.FacultyService, f, "email")
		if err != nil {
			return s.result, err
		}
		faculty[f["email"].(string)] = record
	}

	students := map[string]fieldmap.Record{}
	for _, st := range []map[string]any{
		{"firstName": "Alice", "lastName": "Smith", "email": "alice.smith@university.edu", "phone": "555-0101", "departmentId": departments["Computer Science"]["id"], "enrollmentYear": int64(2023)},
		{"firstName": "Bob", "lastName": "Jones", "email": "bob.jones@university.edu", "phone": nil, "departmentId": departments["Mathematics"]["id"], "enrollmentYear": int64(2024)},
	} {
		record, err := s.ensure(ctx, svcs.StudentService, st, "email")
		if err != nil {
			return s.result, err
		}
		students[st["email"].(string)] = record
	}

	for _, c := range []map[string]any{
		{"code": "CS101", "name": "Introduction to Programming", "credits": int64(4), "description": "Fundamentals of programming", "departmentId": departments["Computer Science"]["id"], "facultyId": faculty["grace.hopper@university.edu"]["id"]},
		{"code": "MATH201", "name": "Linear Algebra", "credits": int64(3), "description": nil, "departmentId": departments["Mathematics"]["id"], "facultyId": faculty["carl.gauss@university.edu"]["id"]},
	} {
		if _, err := s.ensure(ctx, svcs.CourseService, c, "code"); err != nil {
			return s.result, err
		}
	}

	for _, e := range []map[string]any{
		{"studentId": students["alice.smith@university.edu"]["id"], "courseCode": "CS101", "grade": "A"},
		{"studentId": students["bob.jones@university.edu"]["id"], "courseCode": "MATH201", "grade": nil},
	} {
		if _, err := s.ensure(ctx, svcs.EnrollmentService, e, "studentId", "courseCode"); err != nil {
			return s.result, err
		}
	}

	lgr.Info().
		Int("created", s.result.Created).
		Int("existing", s.result.Existing).
		Int("statements", session.Len()).
		Msg("Default data ready")
	return s.result, nil
}
