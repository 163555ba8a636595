package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/repository"
)

// CustomerSvc is an implementation of the service.CustomerService interface
type CustomerSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewCustomerService creates a new CustomerSvc
func NewCustomerService(deps Dependencies) *CustomerSvc {
	deps = deps.withRuntime()
	return &CustomerSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// Create registers a customer
func (s *CustomerSvc) Create(ctx context.Context, customerCreate *models.CustomerCreate) (*models.Customer, error) {
	if err := customerCreate.Validate(); err != nil {
		return nil, validationError(err)
	}

	customer := customerCreate.ToCustomer()
	if err := s.checkInterestVehicle(ctx, customer.Interest); err != nil {
		return nil, err
	}

	now := s.clock()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	customer.Visits = []models.Visit{}

	id, err := s.repos.Customer.Create(ctx, customer)
	if err != nil {
		return nil, writeError("create", "customer", err)
	}
	customer.ID = id

	s.logger.Infof("Customer created: %d", id)

	return customer, nil
}

// GetByID gets a customer with their visit history
func (s *CustomerSvc) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	customer, err := s.repos.Customer.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("customer", err)
	}
	return customer, nil
}

// List returns customers matching the filter, newest first
func (s *CustomerSvc) List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError(fmt.Errorf("unknown interest status %q", filter.Status))
	}

	customers, err := s.repos.Customer.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Update applies a partial update and appends the visit, if one is given
func (s *CustomerSvc) Update(ctx context.Context, id int, update *models.CustomerUpdate) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(customer); err != nil {
		return nil, validationError(err)
	}
	if update.Interest != nil {
		if err := s.checkInterestVehicle(ctx, customer.Interest); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Customer.Update(ctx, customer); err != nil {
		return nil, writeError("update", "customer", err)
	}

	if update.Visit != nil {
		visit := *update.Visit
		visit.CustomerID = id
		if visit.Date.IsZero() {
			visit.Date = s.clock()
		}

		visitID, err := s.repos.Customer.AddVisit(ctx, &visit)
		if err != nil {
			return nil, writeError("add", "visit", err)
		}
		visit.ID = visitID
		customer.Visits = append(customer.Visits, visit)
	}

	customer.UpdatedAt = s.clock()

	s.logger.Infof("Customer updated: %d", id)

	return customer, nil
}

// Delete removes a customer
func (s *CustomerSvc) Delete(ctx context.Context, id int) error {
	if err := s.repos.Customer.Delete(ctx, id); err != nil {
		return writeError("delete", "customer", err)
	}

	s.logger.Infof("Customer deleted: %d", id)

	return nil
}

// checkInterestVehicle makes sure a referenced vehicle exists
func (s *CustomerSvc) checkInterestVehicle(ctx context.Context, interest models.Interest) error {
	if interest.VehicleID == nil {
		return nil
	}
	if _, err := s.repos.Vehicle.GetByID(ctx, *interest.VehicleID); err != nil {
		return lookupError("vehicle", err)
	}
	return nil
}
