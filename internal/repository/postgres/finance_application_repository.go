package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dealership-service/internal/models"
)

const applicationColumns = `id, reference, vehicle_id, customer_id, vehicle_price, down_payment_percent,
             down_payment_amount, loan_amount, interest_rate, tenure_months, monthly_installment,
             total_interest, total_payment, insurance_type, no_claim_bonus_percent,
             insurance_premium, status, created_at, updated_at`

// FinanceApplicationRepo is a PostgreSQL implementation of the repository.FinanceApplicationRepository interface
type FinanceApplicationRepo struct {
	db *sql.DB
}

// NewFinanceApplicationRepository creates a new FinanceApplicationRepo
func NewFinanceApplicationRepository(db *sql.DB) *FinanceApplicationRepo {
	return &FinanceApplicationRepo{db: db}
}

// Create stores an application and its installments in a single transaction
func (r *FinanceApplicationRepo) Create(ctx context.Context, app *models.FinanceApplication) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO finance_applications (reference, vehicle_id, customer_id, vehicle_price,
             down_payment_percent, down_payment_amount, loan_amount, interest_rate, tenure_months,
             monthly_installment, total_interest, total_payment, insurance_type,
             no_claim_bonus_percent, insurance_premium, status)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
             RETURNING id`

	var id int
	err = tx.QueryRowContext(
		ctx,
		query,
		app.Reference,
		app.VehicleID,
		app.CustomerID,
		app.VehiclePrice,
		app.DownPaymentPercent,
		app.DownPaymentAmount,
		app.LoanAmount,
		app.InterestRate,
		app.TenureMonths,
		app.MonthlyInstallment,
		app.TotalInterest,
		app.TotalPayment,
		app.InsuranceType,
		app.NoClaimBonusPercent,
		app.InsurancePremium,
		app.Status,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create finance application", err)
	}

	if err = insertInstallments(ctx, tx, id, app.Installments); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// GetByID gets an application by ID, without installments
func (r *FinanceApplicationRepo) GetByID(ctx context.Context, id int) (*models.FinanceApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM finance_applications WHERE id = $1`

	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapGetError("finance application", err)
	}

	return app, nil
}

// List gets applications, newest first, optionally restricted to one status
func (r *FinanceApplicationRepo) List(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM finance_applications`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get finance applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.FinanceApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finance application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return apps, nil
}

// UpdateStatus moves an application from one status to another. It reports
// not found when the application is missing or no longer in status from.
func (r *FinanceApplicationRepo) UpdateStatus(ctx context.Context, id int, from, to models.ApplicationStatus) error {
	query := `UPDATE finance_applications
             SET status = $1, updated_at = NOW()
             WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update finance application: %w", err)
	}

	return checkAffected(result, "finance application")
}

func scanApplication(row rowScanner) (*models.FinanceApplication, error) {
	app := &models.FinanceApplication{}
	err := row.Scan(
		&app.ID,
		&app.Reference,
		&app.VehicleID,
		&app.CustomerID,
		&app.VehiclePrice,
		&app.DownPaymentPercent,
		&app.DownPaymentAmount,
		&app.LoanAmount,
		&app.InterestRate,
		&app.TenureMonths,
		&app.MonthlyInstallment,
		&app.TotalInterest,
		&app.TotalPayment,
		&app.InsuranceType,
		&app.NoClaimBonusPercent,
		&app.InsurancePremium,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}
