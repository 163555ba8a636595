package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership-service/internal/models"
)

func newRegistration(employeeID, email string) *models.StaffRegistration {
	return &models.StaffRegistration{
		StaffCreate: models.StaffCreate{
			EmployeeID: employeeID,
			Name:       "Ravi Kumar",
			Contact:    models.Contact{Phone: "9123456780", Email: email},
			Role:       models.RoleManager,
			Department: models.DepartmentFinance,
			Salary:     models.Salary{Base: 50000, Bonus: 5000},
		},
		Password: "Secret123",
	}
}

func TestStaffSvc_RegisterAndLogin(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	staff, err := svc.Register(ctx, newRegistration("EMP001", "ravi@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, staff.ID)
	assert.NotEmpty(t, staff.PassHash)
	assert.NotEqual(t, "Secret123", staff.PassHash)
	assert.Equal(t, 55000.0, staff.TotalSalary)
	assert.Equal(t, models.DefaultCasualLeave, staff.LeaveBalance.Casual)

	token, err := svc.Login(ctx, &models.StaffLogin{EmployeeID: "EMP001", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(24*time.Hour).Unix(), token.ExpiresAt)

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(staff.ID), claims["staff_id"])
	assert.Equal(t, "Manager", claims["role"])
}

func TestStaffSvc_Register_Errors(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	_, err := svc.Register(ctx, newRegistration("EMP001", "ravi@example.com"))
	require.NoError(t, err)

	duplicate := newRegistration("EMP001", "other@example.com")
	duplicate.Role = models.RoleSales
	_, err = svc.Register(ctx, duplicate)
	assert.ErrorIs(t, err, ErrConflict)

	weak := newRegistration("EMP002", "weak@example.com")
	weak.Password = "password"
	_, err = svc.Register(ctx, weak)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStaffSvc_Register_PrivilegedRoleOnlyBootstraps(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	first := newRegistration("EMP001", "first@example.com")
	first.Role = models.RoleAdmin
	admin, err := svc.Register(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	for i, role := range []models.Role{models.RoleAdmin, models.RoleManager, models.RoleAccountant} {
		reg := newRegistration(fmt.Sprintf("EMP1%d", i), fmt.Sprintf("later%d@example.com", i))
		reg.Role = role
		_, err := svc.Register(ctx, reg)
		assert.ErrorIs(t, err, ErrValidation, role)
		assert.ErrorContains(t, err, "cannot be self-registered")
	}

	sales := newRegistration("EMP020", "sales@example.com")
	sales.Role = models.RoleSales
	_, err = svc.Register(ctx, sales)
	require.NoError(t, err)

	staff, err := svc.List(ctx, models.StaffFilter{})
	require.NoError(t, err)
	assert.Len(t, staff, 2)
}

func TestStaffSvc_Login_Rejections(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	staff, err := svc.Register(ctx, newRegistration("EMP001", "ravi@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.StaffCreate{
		EmployeeID: "EMP009",
		Name:       "No Login",
		Contact:    models.Contact{Phone: "9000000000", Email: "nologin@example.com"},
		Role:       models.RoleMechanic,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		login models.StaffLogin
	}{
		{"unknown employee", models.StaffLogin{EmployeeID: "EMP404", Password: "Secret123"}},
		{"wrong password", models.StaffLogin{EmployeeID: "EMP001", Password: "Secret124"}},
		{"no password set", models.StaffLogin{EmployeeID: "EMP009", Password: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.login)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	inactive := false
	_, err = svc.Update(ctx, staff.ID, &models.StaffUpdate{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.StaffLogin{EmployeeID: "EMP001", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffSvc_MarkAttendance(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	staff, err := svc.Register(ctx, newRegistration("EMP001", "ravi@example.com"))
	require.NoError(t, err)

	marked, err := svc.MarkAttendance(ctx, staff.ID, &models.AttendanceRequest{})
	require.NoError(t, err)
	require.Len(t, marked.Attendance, 1)
	record := marked.Attendance[0]
	assert.Equal(t, models.AttendancePresent, record.Status)
	require.NotNil(t, record.CheckIn)
	assert.Equal(t, fixedNow, *record.CheckIn)
	assert.Nil(t, record.CheckOut)
	assert.Equal(t, 100, marked.AttendancePercentage)

	checkOut := fixedNow.Add(8 * time.Hour)
	marked, err = svc.MarkAttendance(ctx, staff.ID, &models.AttendanceRequest{
		Status:   models.AttendanceHalfDay,
		CheckOut: &checkOut,
	})
	require.NoError(t, err)
	require.Len(t, marked.Attendance, 1)
	assert.Equal(t, models.AttendanceHalfDay, marked.Attendance[0].Status)
	require.NotNil(t, marked.Attendance[0].CheckOut)
	assert.Equal(t, checkOut, *marked.Attendance[0].CheckOut)
	assert.Equal(t, 0, marked.AttendancePercentage)

	_, err = svc.MarkAttendance(ctx, staff.ID, &models.AttendanceRequest{Status: "Sleeping"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.MarkAttendance(ctx, 999, &models.AttendanceRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaffSvc_ListAndDelete(t *testing.T) {
	env := newTestEnv()
	svc := env.staffService()
	ctx := context.Background()

	staff, err := svc.Register(ctx, newRegistration("EMP001", "ravi@example.com"))
	require.NoError(t, err)

	managers, err := svc.List(ctx, models.StaffFilter{Role: models.RoleManager})
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, 55000.0, managers[0].TotalSalary)

	_, err = svc.List(ctx, models.StaffFilter{Role: "Janitor"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, staff.ID))
	assert.ErrorIs(t, svc.Delete(ctx, staff.ID), ErrNotFound)

	_, err = svc.GetByID(ctx, staff.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
