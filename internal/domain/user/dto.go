package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

// CreateEmployeeRequest onboards a new user and seeds their leave balances.
type CreateEmployeeRequest struct {
	FullName string  `json:"fullName" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	Role     string  `json:"role" validate:"required"`
	ReportTo *string `json:"reportTo,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateEmployeeRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := validator.Struct(r); err != nil {
		return err
	}
	if _, ok := ParseRole(r.Role); !ok {
		return validator.ValidationErrors{{Field: "role", Message: "role must be one of [employee manager admin_office]"}}
	}
	return nil
}

type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ReportTo  *string   `json:"reportTo,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ReportTo:  u.ReportTo,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

type OnboardEmployeeResponse struct {
	User           UserResponse `json:"user"`
	SeededBalances int          `json:"seededBalances"`
}
