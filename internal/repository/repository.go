package repository

import (
	"context"
	"database/sql"
	"time"

	"dealership-service/internal/models"
	"dealership-service/internal/repository/postgres"
)

var (
	// ErrNotFound is wrapped by every repository when a row does not exist
	ErrNotFound = sql.ErrNoRows
	// ErrDuplicate is wrapped when a unique field is already taken
	ErrDuplicate = postgres.ErrDuplicate
	// ErrReferenced is wrapped when a delete is blocked by dependent rows
	ErrReferenced = postgres.ErrReferenced
)

// VehicleRepository defines methods for vehicle repository
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (int, error)
	GetByID(ctx context.Context, id int) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id int) error
}

// CustomerRepository defines methods for customer repository
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (int, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	UpdateInterest(ctx context.Context, id int, interest models.Interest) error
	AddVisit(ctx context.Context, visit *models.Visit) (int, error)
	Delete(ctx context.Context, id int) error
}

// StaffRepository defines methods for staff repository
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) (int, error)
	GetByID(ctx context.Context, id int) (*models.Staff, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id int) error

	GetAttendance(ctx context.Context, staffID int) ([]models.AttendanceRecord, error)
	GetAttendanceByDate(ctx context.Context, staffID int, day time.Time) (*models.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, record *models.AttendanceRecord) (int, error)
	UpdateAttendance(ctx context.Context, record *models.AttendanceRecord) error
}

// PartRepository defines methods for part repository
type PartRepository interface {
	Create(ctx context.Context, part *models.Part) (int, error)
	GetByID(ctx context.Context, id int) (*models.Part, error)
	List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error)
	GetLowStock(ctx context.Context) ([]*models.Part, error)
	Update(ctx context.Context, part *models.Part) error
	AdjustStock(ctx context.Context, id int, apply func(part *models.Part)) (*models.Part, error)
	Delete(ctx context.Context, id int) error
}

// FinanceApplicationRepository defines methods for finance application repository
type FinanceApplicationRepository interface {
	Create(ctx context.Context, app *models.FinanceApplication) (int, error)
	GetByID(ctx context.Context, id int) (*models.FinanceApplication, error)
	List(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error)
	UpdateStatus(ctx context.Context, id int, from, to models.ApplicationStatus) error
}

// InstallmentRepository defines methods for installment repository
type InstallmentRepository interface {
	GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error)
}

// Repository is a composition of all repositories
type Repository struct {
	DB                 *sql.DB
	Vehicle            VehicleRepository
	Customer           CustomerRepository
	Staff              StaffRepository
	Part               PartRepository
	FinanceApplication FinanceApplicationRepository
	Installment        InstallmentRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:                 db,
		Vehicle:            postgres.NewVehicleRepository(db),
		Customer:           postgres.NewCustomerRepository(db),
		Staff:              postgres.NewStaffRepository(db),
		Part:               postgres.NewPartRepository(db),
		FinanceApplication: postgres.NewFinanceApplicationRepository(db),
		Installment:        postgres.NewInstallmentRepository(db),
	}
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	if r.DB == nil {
		return sql.ErrConnDone
	}
	return r.DB.PingContext(ctx)
}
