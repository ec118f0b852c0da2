package services

import (
	"github.com/yigit/unirecords/internal/app/repositories"
	"github.com/yigit/unirecords/internal/pkg/validation"
)

// Services holds one ResourceService per resource.
type Services struct {
	DepartmentService *ResourceService
	StudentService    *ResourceService
	FacultyService    *ResourceService
	CourseService     *ResourceService
	EnrollmentService *ResourceService
}

// NewServices wires a service to each repository, sharing one validator.
func NewServices(repos *repositories.Repositories) *Services {
	v := validation.New()
	return &Services{
		DepartmentService: NewResourceService(repos.DepartmentRepository, v),
		StudentService:    NewResourceService(repos.StudentRepository, v),
		FacultyService:    NewResourceService(repos.FacultyRepository, v),
		CourseService:     NewResourceService(repos.CourseRepository, v),
		EnrollmentService: NewResourceService(repos.EnrollmentRepository, v),
	}
}

// All returns the services in route registration order.
func (s *Services) All() []*ResourceService {
	return []*ResourceService{
		s.DepartmentService,
		s.StudentService,
		s.FacultyService,
		s.CourseService,
		s.EnrollmentService,
	}
}
