package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
)

var _ user.EmployeeService = (*EmployeeServiceImpl)(nil)

type EmployeeServiceImpl struct {
	tx     database.Transactor
	users  user.UserRepository
	seeder leave.BalanceSeeder
}

func NewEmployeeService(tx database.Transactor, userRepo user.UserRepository, seeder leave.BalanceSeeder) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{
		tx:     tx,
		users:  userRepo,
		seeder: seeder,
	}
}

// Onboard implements user.EmployeeService.
func (s *EmployeeServiceImpl) Onboard(ctx context.Context, actor user.Actor, req user.CreateEmployeeRequest) (user.OnboardEmployeeResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionEmployeeOnboard) {
		return user.OnboardEmployeeResponse{}, user.DeniedError(user.PermissionEmployeeOnboard)
	}
	if err := req.Validate(); err != nil {
		return user.OnboardEmployeeResponse{}, err
	}
	role, _ := user.ParseRole(req.Role)

	var (
		created user.User
		seeded  []leave.Balance
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.ReportTo != nil {
			approver, err := s.users.GetByID(ctx, *req.ReportTo)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					return user.ErrReportToNotFound
				}
				return err
			}
			if approver.Role == user.RoleEmployee {
				return user.ErrInvalidApprover
			}
		}

		exists, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return user.ErrUserEmailExists
		}

		created, err = s.users.Create(ctx, user.User{
			FullName: req.FullName,
			Email:    req.Email,
			Role:     role,
			ReportTo: req.ReportTo,
			Status:   user.StatusActive,
		})
		if err != nil {
			return err
		}

		seeded, err = s.seeder.SeedBalances(ctx, created)
		return err
	})
	if err != nil {
		return user.OnboardEmployeeResponse{}, err
	}

	slog.Info("employee onboarded",
		"user_id", created.ID,
		"role", created.Role,
		"seeded_balances", len(seeded),
		"actor_id", actor.UserID,
	)
	return user.OnboardEmployeeResponse{
		User:           user.ToResponse(created),
		SeededBalances: len(seeded),
	}, nil
}

func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return s.users.GetByID(ctx, id)
}
