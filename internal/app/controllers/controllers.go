package controllers

import "github.com/yigit/unirecords/internal/app/services"

// Controllers holds one ResourceController per resource.
type Controllers struct {
	DepartmentController *ResourceController
	StudentController    *ResourceController
	FacultyController    *ResourceController
	CourseController     *ResourceController
	EnrollmentController *ResourceController
}

// NewControllers wires a controller to each service.
func NewControllers(svcs *services.Services) *Controllers {
	return &Controllers{
		DepartmentController: NewResourceController(svcs.DepartmentService),
		StudentController:    NewResourceController(svcs.StudentService),
		FacultyController:    NewResourceController(svcs.FacultyService),
		CourseController:     NewResourceController(svcs.CourseService),
		EnrollmentController: NewResourceController(svcs.EnrollmentService),
	}
}

// All returns the controllers in route registration order.
func (c *Controllers) All() []*ResourceController {
	return []*ResourceController{
		c.DepartmentController,
		c.StudentController,
		c.FacultyController,
		c.CourseController,
		c.EnrollmentController,
	}
}
