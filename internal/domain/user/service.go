package user

import "context"

// EmployeeService onboards users into the directory.
type EmployeeService interface {
	// Onboard creates the user and seeds their leave balances in one
	// transaction. Only admin_office may call it.
	Onboard(ctx context.Context, actor Actor, req CreateEmployeeRequest) (OnboardEmployeeResponse, error)
	GetByID(ctx context.Context, id string) (User, error)
}
