package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dealership-service/internal/models"
)

const installmentArgs = 7

// installmentBatchSize keeps one statement well under the 65535 bind parameter limit
const installmentBatchSize = 1000

// InstallmentRepo is a PostgreSQL implementation of the repository.InstallmentRepository interface
type InstallmentRepo struct {
	db *sql.DB
}

// NewInstallmentRepository creates a new InstallmentRepo
func NewInstallmentRepository(db *sql.DB) *InstallmentRepo {
	return &InstallmentRepo{db: db}
}

// GetByApplicationID gets the schedule of an application in period order
func (r *InstallmentRepo) GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error) {
	query := `SELECT id, application_id, period_index, due_date, payment, principal_amount,
             interest_amount, remaining_balance
             FROM finance_installments
             WHERE application_id = $1
             ORDER BY period_index`

	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}
	defer rows.Close()

	var installments []*models.Installment
	for rows.Next() {
		installment := &models.Installment{}
		err := rows.Scan(
			&installment.ID,
			&installment.ApplicationID,
			&installment.PeriodIndex,
			&installment.DueDate,
			&installment.Payment,
			&installment.PrincipalAmount,
			&installment.InterestAmount,
			&installment.RemainingBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, installment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return installments, nil
}

// insertInstallments writes the rows of a schedule with multi-row INSERTs of
// at most installmentBatchSize rows each
func insertInstallments(ctx context.Context, tx *sql.Tx, applicationID int, installments []*models.Installment) error {
	for start := 0; start < len(installments); start += installmentBatchSize {
		end := start + installmentBatchSize
		if end > len(installments) {
			end = len(installments)
		}
		if err := insertInstallmentBatch(ctx, tx, applicationID, installments[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func insertInstallmentBatch(ctx context.Context, tx *sql.Tx, applicationID int, installments []*models.Installment) error {
	valueStrings := make([]string, 0, len(installments))
	valueArgs := make([]interface{}, 0, len(installments)*installmentArgs)

	for i, installment := range installments {
		base := i * installmentArgs
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))

		installment.ApplicationID = applicationID
		valueArgs = append(valueArgs,
			installment.ApplicationID,
			installment.PeriodIndex,
			installment.DueDate,
			installment.Payment,
			installment.PrincipalAmount,
			installment.InterestAmount,
			installment.RemainingBalance,
		)
	}

	stmt := fmt.Sprintf(`INSERT INTO finance_installments
             (application_id, period_index, due_date, payment, principal_amount,
              interest_amount, remaining_balance)
             VALUES %s`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert installments: %w", err)
	}

	return nil
}
