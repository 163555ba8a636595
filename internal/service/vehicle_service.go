package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/repository"
)

// VehicleSvc is an implementation of the service.VehicleService interface
type VehicleSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewVehicleService creates a new VehicleSvc
func NewVehicleService(deps Dependencies) *VehicleSvc {
	deps = deps.withRuntime()
	return &VehicleSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// Create adds a vehicle to the catalogue
func (s *VehicleSvc) Create(ctx context.Context, vehicleCreate *models.VehicleCreate) (*models.Vehicle, error) {
	if err := vehicleCreate.Validate(); err != nil {
		return nil, validationError(err)
	}

	vehicle := vehicleCreate.ToVehicle()
	now := s.clock()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	id, err := s.repos.Vehicle.Create(ctx, vehicle)
	if err != nil {
		return nil, writeError("create", "vehicle", err)
	}
	vehicle.ID = id

	s.logger.Infof("Vehicle created: %d (%s %s)", id, vehicle.Model, vehicle.Variant)

	return vehicle, nil
}

// GetByID gets a vehicle by ID
func (s *VehicleSvc) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	vehicle, err := s.repos.Vehicle.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("vehicle", err)
	}
	return vehicle, nil
}

// List returns the whole catalogue
func (s *VehicleSvc) List(ctx context.Context) ([]*models.Vehicle, error) {
	vehicles, err := s.repos.Vehicle.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// Update applies a partial update to a vehicle
func (s *VehicleSvc) Update(ctx context.Context, id int, update *models.VehicleUpdate) (*models.Vehicle, error) {
	vehicle, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(vehicle); err != nil {
		return nil, validationError(err)
	}
	vehicle.UpdatedAt = s.clock()

	if err := s.repos.Vehicle.Update(ctx, vehicle); err != nil {
		return nil, writeError("update", "vehicle", err)
	}

	s.logger.Infof("Vehicle updated: %d", id)

	return vehicle, nil
}

// Delete removes a vehicle
func (s *VehicleSvc) Delete(ctx context.Context, id int) error {
	if err := s.repos.Vehicle.Delete(ctx, id); err != nil {
		return writeError("delete", "vehicle", err)
	}

	s.logger.Infof("Vehicle deleted: %d", id)

	return nil
}
