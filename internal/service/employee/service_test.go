package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTx keeps the user map consistent with the rollback semantics of a
// real transaction.
type stubTx struct{ users *stubUsers }

func (t stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[string]user.User, len(t.users.byID))
	for k, v := range t.users.byID {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		t.users.byID = snapshot
		return err
	}
	return nil
}

type stubUsers struct {
	byID map[string]user.User
	seq  int
}

func (r *stubUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[u.ID] = u
	return u, nil
}

func (r *stubUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUsers) LockByID(ctx context.Context, id string) error { return nil }

func (r *stubUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type stubSeeder struct {
	seeded []user.User
	err    error
}

func (s *stubSeeder) SeedBalances(ctx context.Context, u user.User) ([]leave.Balance, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.seeded = append(s.seeded, u)
	n := 4
	if u.Role == user.RoleManager {
		n = 5
	}
	return make([]leave.Balance, n), nil
}

var (
	adminID   = uuid.NewString()
	managerID = uuid.NewString()
	staffID   = uuid.NewString()

	admin = user.Actor{UserID: adminID, Role: user.RoleAdminOffice}
)

func newTestService() (*EmployeeServiceImpl, *stubUsers, *stubSeeder) {
	users := &stubUsers{byID: map[string]user.User{
		adminID:   {ID: adminID, Email: "admin@example.com", Role: user.RoleAdminOffice},
		managerID: {ID: managerID, Email: "mgr@example.com", Role: user.RoleManager},
		staffID:   {ID: staffID, Email: "emp@example.com", Role: user.RoleEmployee},
	}}
	seeder := &stubSeeder{}
	return NewEmployeeService(stubTx{users: users}, users, seeder), users, seeder
}

func strPtr(s string) *string { return &s }

func TestEmployeeService_Onboard_Success(t *testing.T) {
	// Arrange
	svc, users, seeder := newTestService()
	req := user.CreateEmployeeRequest{
		FullName: "New Hire",
		Email:    "  New.Hire@Example.com ",
		Role:     "manager",
		ReportTo: strPtr(adminID),
	}

	// Act
	res, err := svc.Onboard(context.Background(), admin, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", res.User.Email)
	assert.Equal(t, user.RoleManager, res.User.Role)
	assert.Equal(t, user.StatusActive, res.User.Status)
	assert.Equal(t, 5, res.SeededBalances)
	require.Len(t, seeder.seeded, 1)
	assert.Equal(t, res.User.ID, seeder.seeded[0].ID)
	assert.Contains(t, users.byID, res.User.ID)
}

func TestEmployeeService_Onboard_LegacyAdminSpelling(t *testing.T) {
	svc, _, _ := newTestService()

	res, err := svc.Onboard(context.Background(), admin, user.CreateEmployeeRequest{
		FullName: "Office", Email: "office@example.com", Role: "admin office",
	})

	require.NoError(t, err)
	assert.Equal(t, user.RoleAdminOffice, res.User.Role)
}

func TestEmployeeService_Onboard_Errors(t *testing.T) {
	valid := func() user.CreateEmployeeRequest {
		return user.CreateEmployeeRequest{FullName: "A", Email: "a@example.com", Role: "employee", ReportTo: strPtr(managerID)}
	}

	cases := []struct {
		name  string
		actor user.Actor
		req   func() user.CreateEmployeeRequest
		want  error
	}{
		{"manager caller", user.Actor{UserID: managerID, Role: user.RoleManager}, valid, user.ErrAdminOfficeRequired},
		{"unknown approver", admin, func() user.CreateEmployeeRequest {
			r := valid()
			r.ReportTo = strPtr(uuid.NewString())
			return r
		}, user.ErrReportToNotFound},
		{"employee approver", admin, func() user.CreateEmployeeRequest {
			r := valid()
			r.ReportTo = strPtr(staffID)
			return r
		}, user.ErrInvalidApprover},
		{"duplicate email", admin, func() user.CreateEmployeeRequest {
			r := valid()
			r.Email = "EMP@example.com"
			return r
		}, user.ErrUserEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, seeder := newTestService()

			_, err := svc.Onboard(context.Background(), tc.actor, tc.req())

			assert.ErrorIs(t, err, tc.want)
			assert.Len(t, users.byID, 3)
			assert.Empty(t, seeder.seeded)
		})
	}
}

func TestEmployeeService_Onboard_InvalidBody(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Onboard(context.Background(), admin, user.CreateEmployeeRequest{Email: "nope", Role: "ceo"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "fullName")
	assert.Contains(t, fields, "email")
}

func TestEmployeeService_Onboard_SeedFailureRollsBack(t *testing.T) {
	svc, users, seeder := newTestService()
	seeder.err = errors.New("db down")

	_, err := svc.Onboard(context.Background(), admin, user.CreateEmployeeRequest{
		FullName: "A", Email: "a@example.com", Role: "employee",
	})

	require.Error(t, err)
	assert.Len(t, users.byID, 3)
}
