package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dealership-service/configs"
	"dealership-service/internal/finance"
	"dealership-service/internal/models"
	"dealership-service/internal/repository"
)

var (
	// ErrValidation is wrapped around every rejected input
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is wrapped when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a write collides with existing state
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned for any failed login
	ErrInvalidCredentials = errors.New("invalid employee id or password")
)

// VehicleService defines methods for vehicle service
type VehicleService interface {
	Create(ctx context.Context, vehicle *models.VehicleCreate) (*models.Vehicle, error)
	GetByID(ctx context.Context, id int) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	Update(ctx context.Context, id int, update *models.VehicleUpdate) (*models.Vehicle, error)
	Delete(ctx context.Context, id int) error
}

// CustomerService defines methods for customer service
type CustomerService interface {
	Create(ctx context.Context, customer *models.CustomerCreate) (*models.Customer, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, error)
	Update(ctx context.Context, id int, update *models.CustomerUpdate) (*models.Customer, error)
	Delete(ctx context.Context, id int) error
}

// StaffService defines methods for staff service
type StaffService interface {
	Register(ctx context.Context, reg *models.StaffRegistration) (*models.Staff, error)
	Login(ctx context.Context, login *models.StaffLogin) (*models.TokenResponse, error)
	Create(ctx context.Context, staff *models.StaffCreate) (*models.Staff, error)
	GetByID(ctx context.Context, id int) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error)
	Update(ctx context.Context, id int, update *models.StaffUpdate) (*models.Staff, error)
	Delete(ctx context.Context, id int) error
	MarkAttendance(ctx context.Context, id int, req *models.AttendanceRequest) (*models.Staff, error)
}

// PartService defines methods for part service
type PartService interface {
	Create(ctx context.Context, part *models.PartCreate) (*models.Part, error)
	GetByID(ctx context.Context, id int) (*models.Part, error)
	List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error)
	GetLowStock(ctx context.Context) ([]*models.Part, error)
	Update(ctx context.Context, id int, update *models.PartUpdate) (*models.Part, error)
	AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.Part, error)
	Delete(ctx context.Context, id int) error
	SendReorderDigest(ctx context.Context) (int, error)
}

// FinanceService defines methods for finance service
type FinanceService interface {
	Calculate(ctx context.Context, req *models.FinanceRequest) (*models.FinanceQuote, error)
	CreateApplication(ctx context.Context, req *models.FinanceRequest) (*models.FinanceApplication, error)
	GetApplication(ctx context.Context, id int) (*models.FinanceApplication, error)
	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error)
	UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.FinanceApplication, error)
}

// EmailService defines methods for email service
type EmailService interface {
	SendApplicationConfirmation(ctx context.Context, customer *models.Customer, vehicle *models.Vehicle, app *models.FinanceApplication) error
	SendReorderAlert(ctx context.Context, part *models.Part) error
	SendReorderDigest(ctx context.Context, parts []*models.Part) error
}

// RateService supplies the base annual lending rate in percent
type RateService interface {
	BaseRate(ctx context.Context) (float64, error)
}

// QuoteCache stores computed quotes by loan request
type QuoteCache interface {
	Get(ctx context.Context, req finance.LoanRequest) (*finance.FinancingQuote, bool, error)
	Set(ctx context.Context, req finance.LoanRequest, quote *finance.FinancingQuote) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos  *repository.Repository
	Logger *logrus.Logger
	Config *configs.Config
	// Cache is optional; quotes are always computed when it is nil
	Cache QuoteCache
	// Clock defaults to time.Now
	Clock func() time.Time
	// Email and Rates override the SMTP and feed backed defaults
	Email EmailService
	Rates RateService

	tasks *backgroundTasks
}

// Service is a composition of all services
type Service struct {
	Vehicle  VehicleService
	Customer CustomerService
	Staff    StaffService
	Part     PartService
	Finance  FinanceService
	Email    EmailService
	Rates    RateService

	tasks *backgroundTasks
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	deps = deps.withDefaults()

	return &Service{
		Vehicle:  NewVehicleService(deps),
		Customer: NewCustomerService(deps),
		Staff:    NewStaffService(deps),
		Part:     NewPartService(deps),
		Finance:  NewFinanceService(deps),
		Email:    deps.Email,
		Rates:    deps.Rates,
		tasks:    deps.tasks,
	}
}

// Wait blocks until background notifications have finished
func (s *Service) Wait() {
	s.tasks.Wait()
}

func (d Dependencies) withDefaults() Dependencies {
	d = d.withRuntime()
	if d.Email == nil {
		d.Email = NewEmailService(d)
	}
	if d.Rates == nil {
		d.Rates = NewRateService(d)
	}
	return d
}

func (d Dependencies) withRuntime() Dependencies {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.tasks == nil {
		d.tasks = &backgroundTasks{}
	}
	return d
}

// backgroundTasks tracks fire-and-forget work such as notification emails
type backgroundTasks struct {
	wg sync.WaitGroup
}

func (b *backgroundTasks) Go(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

func (b *backgroundTasks) Wait() {
	b.wg.Wait()
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// lookupError turns a missing row into "<entity> not found" and wraps anything else
func lookupError(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

func writeError(action, entity string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, entity)
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%w: %s is still referenced", ErrConflict, entity)
	}
	return fmt.Errorf("failed to %s %s: %w", action, entity, err)
}
