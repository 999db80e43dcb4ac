package user

import "context"

// UserRepository is the user directory the leave engine reads approver
// chains and roles from.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// LockByID takes a row lock on the user inside the current transaction.
	LockByID(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
