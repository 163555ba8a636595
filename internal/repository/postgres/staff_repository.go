package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dealership-service/internal/models"
)

const staffColumns = `id, employee_id, name, phone, email, role, department, salary_base, salary_bonus,
             rating, sales_target, sales_achieved, leave_casual, leave_sick, leave_earned,
             active, joined_date, password_hash`

// StaffRepo is a PostgreSQL implementation of the repository.StaffRepository interface
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepository creates a new StaffRepo
func NewStaffRepository(db *sql.DB) *StaffRepo {
	return &StaffRepo{db: db}
}

// Create creates a new staff member in the database
func (r *StaffRepo) Create(ctx context.Context, staff *models.Staff) (int, error) {
	query := `INSERT INTO staff (employee_id, name, phone, email, role, department, salary_base,
             salary_bonus, rating, sales_target, sales_achieved, leave_casual, leave_sick,
             leave_earned, active, password_hash)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
             RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		staff.EmployeeID,
		staff.Name,
		staff.Contact.Phone,
		staff.Contact.Email,
		staff.Role,
		staff.Department,
		staff.Salary.Base,
		staff.Salary.Bonus,
		staff.Performance.Rating,
		staff.Performance.SalesTarget,
		staff.Performance.SalesAchieved,
		staff.LeaveBalance.Casual,
		staff.LeaveBalance.Sick,
		staff.LeaveBalance.Earned,
		staff.Active,
		staff.PassHash,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create staff", err)
	}

	return id, nil
}

// GetByID gets a staff member by ID together with the attendance history
func (r *StaffRepo) GetByID(ctx context.Context, id int) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	staff, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapGetError("staff", err)
	}

	attendance, err := r.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	staff.Attendance = attendance

	return staff, nil
}

// GetByEmployeeID gets a staff member by employee ID, without attendance
func (r *StaffRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE employee_id = $1`

	staff, err := scanStaff(r.db.QueryRowContext(ctx, query, employeeID))
	if err != nil {
		return nil, wrapGetError("staff", err)
	}

	return staff, nil
}

// List gets staff matching filter, most recently joined first
func (r *StaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}

	query := `SELECT ` + staffColumns + ` FROM staff`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY joined_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	defer rows.Close()

	var members []*models.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		members = append(members, staff)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return members, nil
}

// Update updates a staff member's profile. The password hash is left untouched.
func (r *StaffRepo) Update(ctx context.Context, staff *models.Staff) error {
	query := `UPDATE staff
             SET name = $1, phone = $2, email = $3, role = $4, department = $5, salary_base = $6,
             salary_bonus = $7, rating = $8, sales_target = $9, sales_achieved = $10,
             leave_casual = $11, leave_sick = $12, leave_earned = $13, active = $14
             WHERE id = $15`

	result, err := r.db.ExecContext(
		ctx,
		query,
		staff.Name,
		staff.Contact.Phone,
		staff.Contact.Email,
		staff.Role,
		staff.Department,
		staff.Salary.Base,
		staff.Salary.Bonus,
		staff.Performance.Rating,
		staff.Performance.SalesTarget,
		staff.Performance.SalesAchieved,
		staff.LeaveBalance.Casual,
		staff.LeaveBalance.Sick,
		staff.LeaveBalance.Earned,
		staff.Active,
		staff.ID,
	)

	if err != nil {
		return wrapWriteError("update staff", err)
	}

	return checkAffected(result, "staff")
}

// Delete deletes a staff member by ID
func (r *StaffRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete staff", err)
	}

	return checkAffected(result, "staff")
}

// GetAttendance gets all attendance records of a staff member, oldest first
func (r *StaffRepo) GetAttendance(ctx context.Context, staffID int) ([]models.AttendanceRecord, error) {
	query := `SELECT id, staff_id, attendance_date, status, check_in, check_out
             FROM staff_attendance WHERE staff_id = $1
             ORDER BY attendance_date`

	rows, err := r.db.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

// GetAttendanceByDate gets the record for one calendar day
func (r *StaffRepo) GetAttendanceByDate(ctx context.Context, staffID int, day time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT id, staff_id, attendance_date, status, check_in, check_out
             FROM staff_attendance WHERE staff_id = $1 AND attendance_date = $2`

	record, err := scanAttendance(r.db.QueryRowContext(ctx, query, staffID, day.Format("2006-01-02")))
	if err != nil {
		return nil, wrapGetError("attendance", err)
	}

	return record, nil
}

// CreateAttendance inserts an attendance record
func (r *StaffRepo) CreateAttendance(ctx context.Context, record *models.AttendanceRecord) (int, error) {
	query := `INSERT INTO staff_attendance (staff_id, attendance_date, status, check_in, check_out)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		record.StaffID,
		record.Date.Format("2006-01-02"),
		record.Status,
		record.CheckIn,
		record.CheckOut,
	).Scan(&id)

	if err != nil {
		return 0, wrapWriteError("create attendance", err)
	}

	return id, nil
}

// UpdateAttendance updates status and check-out of an attendance record
func (r *StaffRepo) UpdateAttendance(ctx context.Context, record *models.AttendanceRecord) error {
	query := `UPDATE staff_attendance SET status = $1, check_out = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, record.Status, record.CheckOut, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	return checkAffected(result, "attendance")
}

func scanStaff(row rowScanner) (*models.Staff, error) {
	staff := &models.Staff{}
	err := row.Scan(
		&staff.ID,
		&staff.EmployeeID,
		&staff.Name,
		&staff.Contact.Phone,
		&staff.Contact.Email,
		&staff.Role,
		&staff.Department,
		&staff.Salary.Base,
		&staff.Salary.Bonus,
		&staff.Performance.Rating,
		&staff.Performance.SalesTarget,
		&staff.Performance.SalesAchieved,
		&staff.LeaveBalance.Casual,
		&staff.LeaveBalance.Sick,
		&staff.LeaveBalance.Earned,
		&staff.Active,
		&staff.JoinedDate,
		&staff.PassHash,
	)
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func scanAttendance(row rowScanner) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{}
	err := row.Scan(
		&record.ID,
		&record.StaffID,
		&record.Date,
		&record.Status,
		&record.CheckIn,
		&record.CheckOut,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}
