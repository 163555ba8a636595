package models

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

// Role defines what a staff member does
type Role string

const (
	RoleSales      Role = "Sales"
	RoleMechanic   Role = "Mechanic"
	RoleManager    Role = "Manager"
	RoleAdmin      Role = "Admin"
	RoleAccountant Role = "Accountant"
)

// Department groups staff members
type Department string

const (
	DepartmentSales   Department = "Sales"
	DepartmentService Department = "Service"
	DepartmentFinance Department = "Finance"
	DepartmentAdmin   Department = "Admin"
	DepartmentParts   Department = "Parts"
)

// AttendanceStatus is the outcome of one working day
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceOnLeave AttendanceStatus = "On Leave"
	AttendanceHalfDay AttendanceStatus = "Half Day"
)

// Leave days granted to new staff
const (
	DefaultCasualLeave = 12
	DefaultSickLeave   = 10
)

// Salary holds monthly pay
type Salary struct {
	Base  float64 `json:"base"`
	Bonus float64 `json:"bonus"`
}

// Performance holds the latest review
type Performance struct {
	Rating        int     `json:"rating,omitempty"`
	SalesTarget   float64 `json:"sales_target,omitempty"`
	SalesAchieved float64 `json:"sales_achieved,omitempty"`
}

// LeaveBalance holds remaining leave days
type LeaveBalance struct {
	Casual int `json:"casual"`
	Sick   int `json:"sick"`
	Earned int `json:"earned"`
}

// AttendanceRecord is one day of attendance
type AttendanceRecord struct {
	ID       int              `json:"id" db:"id"`
	StaffID  int              `json:"staff_id" db:"staff_id"`
	Date     time.Time        `json:"date" db:"attendance_date"`
	Status   AttendanceStatus `json:"status" db:"status"`
	CheckIn  *time.Time       `json:"check_in,omitempty" db:"check_in"`
	CheckOut *time.Time       `json:"check_out,omitempty" db:"check_out"`
}

// Staff represents an employee of the dealership
type Staff struct {
	ID                   int                `json:"id" db:"id"`
	EmployeeID           string             `json:"employee_id" db:"employee_id"`
	Name                 string             `json:"name" db:"name"`
	Contact              Contact            `json:"contact"`
	Role                 Role               `json:"role" db:"role"`
	Department           Department         `json:"department" db:"department"`
	Salary               Salary             `json:"salary"`
	Performance          Performance        `json:"performance"`
	LeaveBalance         LeaveBalance       `json:"leave_balance"`
	Attendance           []AttendanceRecord `json:"attendance"`
	Active               bool               `json:"active" db:"active"`
	JoinedDate           time.Time          `json:"joined_date" db:"joined_date"`
	PassHash             string             `json:"-" db:"password_hash"`
	TotalSalary          float64            `json:"total_salary" db:"-"`
	AttendancePercentage int                `json:"attendance_percentage" db:"-"`
}

// StaffCreate represents staff creation data
type StaffCreate struct {
	EmployeeID  string      `json:"employee_id"`
	Name        string      `json:"name"`
	Contact     Contact     `json:"contact"`
	Role        Role        `json:"role"`
	Department  Department  `json:"department"`
	Salary      Salary      `json:"salary"`
	Performance Performance `json:"performance"`
}

// StaffRegistration is StaffCreate plus login credentials
type StaffRegistration struct {
	StaffCreate
	Password string `json:"password"`
}

// StaffLogin represents staff login data
type StaffLogin struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// StaffUpdate carries a partial update
type StaffUpdate struct {
	Name         *string       `json:"name,omitempty"`
	Contact      *Contact      `json:"contact,omitempty"`
	Role         *Role         `json:"role,omitempty"`
	Department   *Department   `json:"department,omitempty"`
	Salary       *Salary       `json:"salary,omitempty"`
	Performance  *Performance  `json:"performance,omitempty"`
	LeaveBalance *LeaveBalance `json:"leave_balance,omitempty"`
	Active       *bool         `json:"active,omitempty"`
}

// AttendanceRequest marks or amends today's attendance
type AttendanceRequest struct {
	Status   AttendanceStatus `json:"status,omitempty"`
	CheckIn  *time.Time       `json:"check_in,omitempty"`
	CheckOut *time.Time       `json:"check_out,omitempty"`
}

// StaffFilter narrows a staff listing
type StaffFilter struct {
	Role   Role
	Active *bool
}

// Validate validates and normalizes staff creation data
func (s *StaffCreate) Validate() error {
	s.EmployeeID = strings.TrimSpace(s.EmployeeID)
	s.Name = strings.TrimSpace(s.Name)

	if s.EmployeeID == "" || s.Name == "" {
		return errors.New("employee id and name are required")
	}
	if err := s.Contact.normalize(); err != nil {
		return err
	}
	if s.Contact.Email == "" {
		return errors.New("email is required")
	}
	if !s.Role.Valid() {
		return errors.New("role must be Sales, Mechanic, Manager, Admin or Accountant")
	}
	if s.Department != "" && !s.Department.Valid() {
		return errors.New("department must be Sales, Service, Finance, Admin or Parts")
	}
	if err := s.Salary.validate(); err != nil {
		return err
	}
	return s.Performance.validate()
}

// ValidateRegistration validates staff registration data
func (r *StaffRegistration) ValidateRegistration() error {
	if err := r.StaffCreate.Validate(); err != nil {
		return err
	}

	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hasUppercase := regexp.MustCompile(`[A-Z]`).MatchString(r.Password)
	hasLowercase := regexp.MustCompile(`[a-z]`).MatchString(r.Password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(r.Password)

	if !hasUppercase || !hasLowercase || !hasNumber {
		return errors.New("password must contain at least one uppercase letter, one lowercase letter, and one number")
	}

	return nil
}

// ToStaff converts StaffCreate to Staff with default leave and an active flag
func (s *StaffCreate) ToStaff() *Staff {
	return &Staff{
		EmployeeID:  s.EmployeeID,
		Name:        s.Name,
		Contact:     s.Contact,
		Role:        s.Role,
		Department:  s.Department,
		Salary:      s.Salary,
		Performance: s.Performance,
		LeaveBalance: LeaveBalance{
			Casual: DefaultCasualLeave,
			Sick:   DefaultSickLeave,
		},
		Active: true,
	}
}

// Apply copies the set fields onto staff
func (u *StaffUpdate) Apply(staff *Staff) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errors.New("name is required")
		}
		staff.Name = name
	}
	if u.Contact != nil {
		contact := *u.Contact
		if err := contact.normalize(); err != nil {
			return err
		}
		if contact.Email == "" {
			return errors.New("email is required")
		}
		staff.Contact = contact
	}
	if u.Role != nil {
		if !u.Role.Valid() {
			return errors.New("unknown role")
		}
		staff.Role = *u.Role
	}
	if u.Department != nil {
		if !u.Department.Valid() {
			return errors.New("unknown department")
		}
		staff.Department = *u.Department
	}
	if u.Salary != nil {
		if err := u.Salary.validate(); err != nil {
			return err
		}
		staff.Salary = *u.Salary
	}
	if u.Performance != nil {
		if err := u.Performance.validate(); err != nil {
			return err
		}
		staff.Performance = *u.Performance
	}
	if u.LeaveBalance != nil {
		if u.LeaveBalance.Casual < 0 || u.LeaveBalance.Sick < 0 || u.LeaveBalance.Earned < 0 {
			return errors.New("leave balance cannot be negative")
		}
		staff.LeaveBalance = *u.LeaveBalance
	}
	if u.Active != nil {
		staff.Active = *u.Active
	}
	return nil
}

// Validate checks the attendance status, if one is given
func (a *AttendanceRequest) Validate() error {
	if a.Status != "" && !a.Status.Valid() {
		return errors.New("status must be Present, Absent, Late, On Leave or Half Day")
	}
	return nil
}

// Derive fills the computed salary and attendance fields
func (s *Staff) Derive() {
	s.TotalSalary = s.Salary.Base + s.Salary.Bonus
	s.AttendancePercentage = AttendancePercentage(s.Attendance)
}

// AttendancePercentage is the share of Present days, rounded to a whole percent
func AttendancePercentage(records []AttendanceRecord) int {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, r := range records {
		if r.Status == AttendancePresent {
			present++
		}
	}
	return int(math.Round(float64(present) / float64(len(records)) * 100))
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleMechanic, RoleManager, RoleAdmin, RoleAccountant:
		return true
	}
	return false
}

// Privileged reports whether r can approve finance applications or manage staff
func (r Role) Privileged() bool {
	return r == RoleManager || r == RoleAdmin || r == RoleAccountant
}

// Valid reports whether d is a known department
func (d Department) Valid() bool {
	switch d {
	case DepartmentSales, DepartmentService, DepartmentFinance, DepartmentAdmin, DepartmentParts:
		return true
	}
	return false
}

// Valid reports whether s is a known attendance status
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceOnLeave, AttendanceHalfDay:
		return true
	}
	return false
}

func (s Salary) validate() error {
	if s.Base < 0 || s.Bonus < 0 {
		return errors.New("salary cannot be negative")
	}
	return nil
}

func (p Performance) validate() error {
	if p.Rating != 0 && (p.Rating < 1 || p.Rating > 5) {
		return errors.New("performance rating must be between 1 and 5")
	}
	return nil
}
