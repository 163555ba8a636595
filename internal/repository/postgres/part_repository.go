package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"dealership-service/internal/models"
)

const partColumns = `id, part_number, name, description, compatible_vehicle_ids, category, price, cost,
             stock, min_stock_level, supplier_name, supplier_contact, supplier_lead_time_days,
             last_ordered, next_order_date, created_at, updated_at`

// PartRepo is a PostgreSQL implementation of the repository.PartRepository interface
type PartRepo struct {
	db *sql.DB
}

// NewPartRepository creates a new PartRepo
func NewPartRepository(db *sql.DB) *PartRepo {
	return &PartRepo{db: db}
}

// Create creates a new part in the database
func (r *PartRepo) Create(ctx context.Context, part *models.Part) (int, error) {
	query := `INSERT INTO parts (part_number, name, description, compatible_vehicle_ids, category,
             price, cost, stock, min_stock_level, supplier_name, supplier_contact,
             supplier_lead_time_days, last_ordered, next_order_date)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		part.PartNumber,
		part.Name,
		part.Description,
		pq.Array(part.CompatibleVehicleIDs),
		part.Category,
		part.Price,
		part.Cost,
		part.Stock,
		part.MinStockLevel,
		part.Supplier.Name,
		part.Supplier.Contact,
		part.Supplier.LeadTimeDays,
		part.LastOrdered,
		part.NextOrderDate,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create part", err)
	}

	return id, nil
}

// GetByID gets a part by ID
func (r *PartRepo) GetByID(ctx context.Context, id int) (*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`

	part, err := scanPart(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapGetError("part", err)
	}

	return part, nil
}

// List gets parts matching filter, sorted by name
func (r *PartRepo) List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.LowStock {
		conditions = append(conditions, "stock < min_stock_level")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(name ILIKE $%d OR part_number ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + partColumns + ` FROM parts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	return r.queryParts(ctx, query, args...)
}

// GetLowStock gets all parts whose stock is below the minimum level
func (r *PartRepo) GetLowStock(ctx context.Context) ([]*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts
             WHERE stock < min_stock_level
             ORDER BY next_order_date NULLS LAST, name`

	return r.queryParts(ctx, query)
}

// Update updates a part, including its stock and reorder dates
func (r *PartRepo) Update(ctx context.Context, part *models.Part) error {
	result, err := updatePart(ctx, r.db, part)
	if err != nil {
		return wrapWriteError("update part", err)
	}

	return checkAffected(result, "part")
}

// AdjustStock locks a part, lets apply change it and writes it back in one
// transaction so concurrent adjustments do not lose updates
func (r *PartRepo) AdjustStock(ctx context.Context, id int, apply func(part *models.Part)) (*models.Part, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var part *models.Part
	part, err = scanPart(tx.QueryRowContext(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapGetError("part", err)
	}

	apply(part)

	if _, err = updatePart(ctx, tx, part); err != nil {
		return nil, fmt.Errorf("failed to update part stock: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return part, nil
}

// Delete deletes a part by ID
func (r *PartRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete part", err)
	}

	return checkAffected(result, "part")
}

func (r *PartRepo) queryParts(ctx context.Context, query string, args ...interface{}) ([]*models.Part, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get parts: %w", err)
	}
	defer rows.Close()

	var parts []*models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, part)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return parts, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updatePart(ctx context.Context, db execer, part *models.Part) (sql.Result, error) {
	query := `UPDATE parts
             SET name = $1, description = $2, compatible_vehicle_ids = $3, category = $4, price = $5,
             cost = $6, stock = $7, min_stock_level = $8, supplier_name = $9, supplier_contact = $10,
             supplier_lead_time_days = $11, last_ordered = $12, next_order_date = $13,
             updated_at = NOW()
             WHERE id = $14`

	return db.ExecContext(
		ctx,
		query,
		part.Name,
		part.Description,
		pq.Array(part.CompatibleVehicleIDs),
		part.Category,
		part.Price,
		part.Cost,
		part.Stock,
		part.MinStockLevel,
		part.Supplier.Name,
		part.Supplier.Contact,
		part.Supplier.LeadTimeDays,
		part.LastOrdered,
		part.NextOrderDate,
		part.ID,
	)
}

func scanPart(row rowScanner) (*models.Part, error) {
	part := &models.Part{}
	err := row.Scan(
		&part.ID,
		&part.PartNumber,
		&part.Name,
		&part.Description,
		pq.Array(&part.CompatibleVehicleIDs),
		&part.Category,
		&part.Price,
		&part.Cost,
		&part.Stock,
		&part.MinStockLevel,
		&part.Supplier.Name,
		&part.Supplier.Contact,
		&part.Supplier.LeadTimeDays,
		&part.LastOrdered,
		&part.NextOrderDate,
		&part.CreatedAt,
		&part.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return part, nil
}
