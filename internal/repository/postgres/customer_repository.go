package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dealership-service/internal/models"
)

const customerColumns = `id, name, phone, email, street, city, state, pincode,
             interest_vehicle_id, interest_status, interest_notes, created_at, updated_at`

// CustomerRepo is a PostgreSQL implementation of the repository.CustomerRepository interface
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepo
func NewCustomerRepository(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create creates a new customer in the database
func (r *CustomerRepo) Create(ctx context.Context, customer *models.Customer) (int, error) {
	query := `INSERT INTO customers (name, phone, email, street, city, state, pincode,
             interest_vehicle_id, interest_status, interest_notes)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.Name,
		customer.Contact.Phone,
		customer.Contact.Email,
		customer.Address.Street,
		customer.Address.City,
		customer.Address.State,
		customer.Address.Pincode,
		nullableID(customer.Interest.VehicleID),
		customer.Interest.Status,
		customer.Interest.Notes,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create customer", err)
	}

	return id, nil
}

// GetByID gets a customer by ID together with the visit history
func (r *CustomerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapGetError("customer", err)
	}

	visits, err := r.getVisits(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Visits = visits

	return customer, nil
}

// List gets customers matching filter, newest first. Visits are not loaded.
func (r *CustomerRepo) List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("interest_status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + customerColumns + ` FROM customers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return customers, nil
}

// Update updates a customer's profile and interest
func (r *CustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `UPDATE customers
             SET name = $1, phone = $2, email = $3, street = $4, city = $5, state = $6,
             pincode = $7, interest_vehicle_id = $8, interest_status = $9, interest_notes = $10,
             updated_at = NOW()
             WHERE id = $11`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.Name,
		customer.Contact.Phone,
		customer.Contact.Email,
		customer.Address.Street,
		customer.Address.City,
		customer.Address.State,
		customer.Address.Pincode,
		nullableID(customer.Interest.VehicleID),
		customer.Interest.Status,
		customer.Interest.Notes,
		customer.ID,
	)

	if err != nil {
		return wrapWriteError("update customer", err)
	}

	return checkAffected(result, "customer")
}

// UpdateInterest replaces only the interest of a customer
func (r *CustomerRepo) UpdateInterest(ctx context.Context, id int, interest models.Interest) error {
	query := `UPDATE customers
             SET interest_vehicle_id = $1, interest_status = $2, interest_notes = $3, updated_at = NOW()
             WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, nullableID(interest.VehicleID), interest.Status, interest.Notes, id)
	if err != nil {
		return fmt.Errorf("failed to update customer interest: %w", err)
	}

	return checkAffected(result, "customer")
}

// AddVisit appends a visit to a customer's history
func (r *CustomerRepo) AddVisit(ctx context.Context, visit *models.Visit) (int, error) {
	query := `INSERT INTO customer_visits (customer_id, visit_date, purpose, outcome, follow_up_date)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		visit.CustomerID,
		visit.Date,
		visit.Purpose,
		visit.Outcome,
		visit.FollowUpDate,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to add visit: %w", err)
	}

	return id, nil
}

// Delete deletes a customer by ID
func (r *CustomerRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete customer", err)
	}

	return checkAffected(result, "customer")
}

func (r *CustomerRepo) getVisits(ctx context.Context, customerID int) ([]models.Visit, error) {
	query := `SELECT id, customer_id, visit_date, purpose, outcome, follow_up_date
             FROM customer_visits WHERE customer_id = $1
             ORDER BY visit_date`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visits: %w", err)
	}
	defer rows.Close()

	visits := []models.Visit{}
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(
			&visit.ID,
			&visit.CustomerID,
			&visit.Date,
			&visit.Purpose,
			&visit.Outcome,
			&visit.FollowUpDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return visits, nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	customer := &models.Customer{}
	var vehicleID sql.NullInt64
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Contact.Phone,
		&customer.Contact.Email,
		&customer.Address.Street,
		&customer.Address.City,
		&customer.Address.State,
		&customer.Address.Pincode,
		&vehicleID,
		&customer.Interest.Status,
		&customer.Interest.Notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if vehicleID.Valid {
		id := int(vehicleID.Int64)
		customer.Interest.VehicleID = &id
	}
	return customer, nil
}

func nullableID(id *int) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}
