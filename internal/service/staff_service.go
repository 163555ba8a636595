package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/repository"
	"dealership-service/pkg/crypto"
)

// StaffSvc is an implementation of the service.StaffService interface
type StaffSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	clock     func() time.Time
	hasher    *crypto.PasswordHasher
	jwtSecret string
	jwtTTL    time.Duration
}

// NewStaffService creates a new StaffSvc
func NewStaffService(deps Dependencies) *StaffSvc {
	deps = deps.withRuntime()
	return &StaffSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		clock:     deps.Clock,
		hasher:    crypto.NewPasswordHasher(),
		jwtSecret: deps.Config.JWT.Secret,
		jwtTTL:    time.Duration(deps.Config.JWT.TTL) * time.Hour,
	}
}

// Register creates a staff member who can log in
func (s *StaffSvc) Register(ctx context.Context, reg *models.StaffRegistration) (*models.Staff, error) {
	if err := reg.ValidateRegistration(); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkSelfRegistrationRole(ctx, reg.Role); err != nil {
		return nil, err
	}

	staff := reg.ToStaff()

	hashedPassword, err := s.hasher.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	staff.PassHash = hashedPassword

	if err := s.create(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.Infof("Staff registered: %d (%s)", staff.ID, staff.EmployeeID)

	return staff, nil
}

// checkSelfRegistrationRole lets the public registration grant a privileged
// role only to the first account, which bootstraps an empty staff table.
// Everyone else gets privileged roles from an admin.
func (s *StaffSvc) checkSelfRegistrationRole(ctx context.Context, role models.Role) error {
	if !role.Privileged() {
		return nil
	}

	existing, err := s.repos.Staff.List(ctx, models.StaffFilter{})
	if err != nil {
		return fmt.Errorf("failed to list staff: %w", err)
	}
	if len(existing) > 0 {
		return validationError(fmt.Errorf("the %s role cannot be self-registered", role))
	}
	return nil
}

// Login checks credentials and returns a signed JWT carrying the staff id and role
func (s *StaffSvc) Login(ctx context.Context, login *models.StaffLogin) (*models.TokenResponse, error) {
	staff, err := s.repos.Staff.GetByEmployeeID(ctx, login.EmployeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}

	if !staff.Active || staff.PassHash == "" || !s.hasher.CheckPasswordHash(login.Password, staff.PassHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.clock()
	expirationTime := now.Add(s.jwtTTL)

	claims := jwt.MapClaims{
		"staff_id": staff.ID,
		"role":     string(staff.Role),
		"iat":      now.Unix(),
		"exp":      expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infof("Staff logged in: %d", staff.ID)

	return &models.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// Create adds a staff member without login credentials
func (s *StaffSvc) Create(ctx context.Context, staffCreate *models.StaffCreate) (*models.Staff, error) {
	if err := staffCreate.Validate(); err != nil {
		return nil, validationError(err)
	}

	staff := staffCreate.ToStaff()
	if err := s.create(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.Infof("Staff created: %d (%s)", staff.ID, staff.EmployeeID)

	return staff, nil
}

func (s *StaffSvc) create(ctx context.Context, staff *models.Staff) error {
	id, err := s.repos.Staff.Create(ctx, staff)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: employee id or email already registered", ErrConflict)
		}
		return fmt.Errorf("failed to create staff: %w", err)
	}

	staff.ID = id
	staff.JoinedDate = s.clock()
	staff.Attendance = []models.AttendanceRecord{}
	staff.Derive()
	return nil
}

// GetByID gets a staff member with attendance and derived fields
func (s *StaffSvc) GetByID(ctx context.Context, id int) (*models.Staff, error) {
	staff, err := s.repos.Staff.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("staff", err)
	}

	staff.Derive()
	return staff, nil
}

// List returns staff matching the filter, most recently joined first
func (s *StaffSvc) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, validationError(fmt.Errorf("unknown role %q", filter.Role))
	}

	members, err := s.repos.Staff.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	for _, staff := range members {
		staff.Derive()
	}
	return members, nil
}

// Update applies a partial update to a staff member
func (s *StaffSvc) Update(ctx context.Context, id int, update *models.StaffUpdate) (*models.Staff, error) {
	staff, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(staff); err != nil {
		return nil, validationError(err)
	}

	if err := s.repos.Staff.Update(ctx, staff); err != nil {
		return nil, writeError("update", "staff", err)
	}

	staff.Derive()

	s.logger.Infof("Staff updated: %d", id)

	return staff, nil
}

// Delete removes a staff member
func (s *StaffSvc) Delete(ctx context.Context, id int) error {
	if err := s.repos.Staff.Delete(ctx, id); err != nil {
		return writeError("delete", "staff", err)
	}

	s.logger.Infof("Staff deleted: %d", id)

	return nil
}

// MarkAttendance records today's attendance. An existing record for today gets
// its check-out and status amended; otherwise a new one is created, Present and
// checked in now unless the request says otherwise.
func (s *StaffSvc) MarkAttendance(ctx context.Context, id int, req *models.AttendanceRequest) (*models.Staff, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.repos.Staff.GetByID(ctx, id); err != nil {
		return nil, lookupError("staff", err)
	}

	now := s.clock()
	today := now.UTC()

	record, err := s.repos.Staff.GetAttendanceByDate(ctx, id, today)
	switch {
	case err == nil:
		if req.CheckOut != nil {
			record.CheckOut = req.CheckOut
		}
		if req.Status != "" {
			record.Status = req.Status
		}
		if err := s.repos.Staff.UpdateAttendance(ctx, record); err != nil {
			return nil, writeError("update", "attendance", err)
		}

	case errors.Is(err, repository.ErrNotFound):
		record = &models.AttendanceRecord{
			StaffID:  id,
			Date:     today,
			Status:   req.Status,
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
		}
		if record.Status == "" {
			record.Status = models.AttendancePresent
		}
		if record.CheckIn == nil {
			record.CheckIn = &now
		}
		if _, err := s.repos.Staff.CreateAttendance(ctx, record); err != nil {
			return nil, writeError("create", "attendance", err)
		}

	default:
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	s.logger.Infof("Attendance marked for staff %d: %s", id, record.Status)

	return s.GetByID(ctx, id)
}
