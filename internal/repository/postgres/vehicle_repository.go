package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"dealership-service/internal/models"
)

const vehicleColumns = `id, model, variant, price, engine, mileage, power, transmission, fuel_type,
             colors, image_url, stock, featured, created_at, updated_at`

// VehicleRepo is a PostgreSQL implementation of the repository.VehicleRepository interface
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepository creates a new VehicleRepo
func NewVehicleRepository(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// Create creates a new vehicle in the database
func (r *VehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) (int, error) {
	query := `INSERT INTO vehicles (model, variant, price, engine, mileage, power, transmission,
             fuel_type, colors, image_url, stock, featured)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		vehicle.Model,
		vehicle.Variant,
		vehicle.Price,
		vehicle.Specs.Engine,
		vehicle.Specs.Mileage,
		vehicle.Specs.Power,
		vehicle.Specs.Transmission,
		vehicle.Specs.FuelType,
		pq.Array(vehicle.Specs.Colors),
		vehicle.ImageURL,
		vehicle.Stock,
		vehicle.Featured,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create vehicle", err)
	}

	return id, nil
}

// GetByID gets a vehicle by ID
func (r *VehicleRepo) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapGetError("vehicle", err)
	}

	return vehicle, nil
}

// List gets all vehicles, featured first and then newest
func (r *VehicleRepo) List(ctx context.Context) ([]*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY featured DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return vehicles, nil
}

// Update updates a vehicle
func (r *VehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `UPDATE vehicles
             SET model = $1, variant = $2, price = $3, engine = $4, mileage = $5, power = $6,
             transmission = $7, fuel_type = $8, colors = $9, image_url = $10, stock = $11,
             featured = $12, updated_at = NOW()
             WHERE id = $13`

	result, err := r.db.ExecContext(
		ctx,
		query,
		vehicle.Model,
		vehicle.Variant,
		vehicle.Price,
		vehicle.Specs.Engine,
		vehicle.Specs.Mileage,
		vehicle.Specs.Power,
		vehicle.Specs.Transmission,
		vehicle.Specs.FuelType,
		pq.Array(vehicle.Specs.Colors),
		vehicle.ImageURL,
		vehicle.Stock,
		vehicle.Featured,
		vehicle.ID,
	)

	if err != nil {
		return wrapWriteError("update vehicle", err)
	}

	return checkAffected(result, "vehicle")
}

// Delete deletes a vehicle by ID
func (r *VehicleRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete vehicle", err)
	}

	return checkAffected(result, "vehicle")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := row.Scan(
		&vehicle.ID,
		&vehicle.Model,
		&vehicle.Variant,
		&vehicle.Price,
		&vehicle.Specs.Engine,
		&vehicle.Specs.Mileage,
		&vehicle.Specs.Power,
		&vehicle.Specs.Transmission,
		&vehicle.Specs.FuelType,
		pq.Array(&vehicle.Specs.Colors),
		&vehicle.ImageURL,
		&vehicle.Stock,
		&vehicle.Featured,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}
