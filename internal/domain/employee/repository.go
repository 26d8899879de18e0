package employee

import "context"

// EmployeeRepository is read-only: employee records are maintained by HR workflows.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	FindByFullName(ctx context.Context, fullName string) ([]Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
