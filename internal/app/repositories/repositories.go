package repositories

import (
	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	DepartmentRepository *ResourceRepository
	StudentRepository    *ResourceRepository
	FacultyRepository    *ResourceRepository
	CourseRepository     *ResourceRepository
	EnrollmentRepository *ResourceRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.Database) *Repositories {
	placeholder := database.Dialect.Placeholder()
	return &Repositories{
		DepartmentRepository: NewResourceRepository(models.Department, placeholder),
		StudentRepository:    NewResourceRepository(models.Student, placeholder),
		FacultyRepository:    NewResourceRepository(models.Faculty, placeholder),
		CourseRepository:     NewResourceRepository(models.Course, placeholder),
		EnrollmentRepository: NewResourceRepository(models.Enrollment, placeholder),
	}
}

// All returns the repositories in route registration order.
func (r *Repositories) All() []*ResourceRepository {
	return []*ResourceRepository{
		r.DepartmentRepository,
		r.StudentRepository,
		r.FacultyRepository,
		r.CourseRepository,
		r.EnrollmentRepository,
	}
}
