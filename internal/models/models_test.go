package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership-service/internal/finance"
)

func validVehicle() VehicleCreate {
	return VehicleCreate{
		Model:   " Roadster ",
		Variant: "Sport",
		Price:   12500,
		Specs: VehicleSpecs{
			Engine:       "650cc",
			Mileage:      "25 kmpl",
			Power:        "47 hp",
			Transmission: TransmissionManual,
			FuelType:     FuelPetrol,
			Colors:       []string{"Red"},
		},
		ImageURL: "https://cdn.example.com/roadster.webp",
		Stock:    3,
	}
}

func TestVehicleCreate_Validate(t *testing.T) {
	v := validVehicle()
	require.NoError(t, v.Validate())
	assert.Equal(t, "Roadster", v.Model)

	tests := []struct {
		name   string
		mutate func(v *VehicleCreate)
	}{
		{"missing model", func(v *VehicleCreate) { v.Model = "  " }},
		{"negative price", func(v *VehicleCreate) { v.Price = -1 }},
		{"negative stock", func(v *VehicleCreate) { v.Stock = -2 }},
		{"bad image url", func(v *VehicleCreate) { v.ImageURL = "ftp://x/y.gif" }},
		{"unknown transmission", func(v *VehicleCreate) { v.Specs.Transmission = "CVT" }},
		{"unknown fuel", func(v *VehicleCreate) { v.Specs.FuelType = "Steam" }},
		{"no colors", func(v *VehicleCreate) { v.Specs.Colors = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVehicle()
			tt.mutate(&v)
			assert.Error(t, v.Validate())
		})
	}
}

func TestVehicleUpdate_Apply(t *testing.T) {
	create := validVehicle()
	require.NoError(t, create.Validate())
	vehicle := create.ToVehicle()

	price := 9999.0
	featured := true
	require.NoError(t, (&VehicleUpdate{Price: &price, Featured: &featured}).Apply(vehicle))
	assert.Equal(t, 9999.0, vehicle.Price)
	assert.True(t, vehicle.Featured)
	assert.Equal(t, "Sport", vehicle.Variant)

	stock := -1
	assert.Error(t, (&VehicleUpdate{Stock: &stock}).Apply(vehicle))
}

func TestCustomerCreate_Validate(t *testing.T) {
	c := CustomerCreate{
		Name:    " Asha ",
		Contact: Contact{Phone: "9876543210", Email: " Asha@Example.COM "},
	}
	require.NoError(t, c.Validate())
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, "asha@example.com", c.Contact.Email)

	customer := c.ToCustomer()
	assert.Equal(t, InterestNew, customer.Interest.Status)

	bad := CustomerCreate{Name: "Ravi", Contact: Contact{Phone: "12345"}}
	assert.Error(t, bad.Validate())

	bad = CustomerCreate{Name: "Ravi", Contact: Contact{Phone: "9876543210", Email: "nope"}}
	assert.Error(t, bad.Validate())

	bad = CustomerCreate{
		Name:     "Ravi",
		Contact:  Contact{Phone: "9876543210"},
		Interest: &Interest{Status: "Browsing"},
	}
	assert.Error(t, bad.Validate())
}

func TestStaffRegistration_Validate(t *testing.T) {
	r := StaffRegistration{
		StaffCreate: StaffCreate{
			EmployeeID: "EMP-001",
			Name:       "Meera",
			Contact:    Contact{Phone: "9000000001", Email: "meera@dealer.example"},
			Role:       RoleAccountant,
			Department: DepartmentFinance,
			Salary:     Salary{Base: 40000, Bonus: 5000},
		},
		Password: "Passw0rdX",
	}
	require.NoError(t, r.ValidateRegistration())

	weak := r
	weak.Password = "password"
	assert.Error(t, weak.ValidateRegistration())

	noEmail := r
	noEmail.Contact.Email = ""
	assert.Error(t, noEmail.ValidateRegistration())

	badRole := r
	badRole.Role = "Intern"
	assert.Error(t, badRole.ValidateRegistration())

	badRating := r
	badRating.Performance.Rating = 6
	assert.Error(t, badRating.ValidateRegistration())

	staff := r.ToStaff()
	assert.True(t, staff.Active)
	assert.Equal(t, LeaveBalance{Casual: 12, Sick: 10, Earned: 0}, staff.LeaveBalance)
}

func TestStaff_Derive(t *testing.T) {
	staff := &Staff{
		Salary: Salary{Base: 30000, Bonus: 2500},
		Attendance: []AttendanceRecord{
			{Status: AttendancePresent},
			{Status: AttendancePresent},
			{Status: AttendanceLate},
		},
	}
	staff.Derive()

	assert.Equal(t, 32500.0, staff.TotalSalary)
	assert.Equal(t, 67, staff.AttendancePercentage)
	assert.Equal(t, 0, AttendancePercentage(nil))
}

func TestPart_RefreshReorderDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	part := &Part{Stock: 2, MinStockLevel: 5}
	part.RefreshReorderDate(now, 7)
	require.NotNil(t, part.NextOrderDate)
	assert.Equal(t, now.AddDate(0, 0, 7), *part.NextOrderDate)

	part.Supplier.LeadTimeDays = 3
	part.RefreshReorderDate(now, 7)
	assert.Equal(t, now.AddDate(0, 0, 3), *part.NextOrderDate)

	part.Stock = 5
	part.RefreshReorderDate(now, 7)
	assert.Nil(t, part.NextOrderDate)
}

func TestPart_ApplyStock(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	part := &Part{Stock: 4}

	part.ApplyStock(StockAdjustment{Action: StockSubtract, Quantity: 10}, now)
	assert.Equal(t, 0, part.Stock)
	assert.Nil(t, part.LastOrdered)

	part.ApplyStock(StockAdjustment{Action: StockAdd, Quantity: 6}, now)
	assert.Equal(t, 6, part.Stock)
	require.NotNil(t, part.LastOrdered)
	assert.Equal(t, now, *part.LastOrdered)

	assert.Error(t, (&StockAdjustment{Action: "remove", Quantity: 1}).Validate())
	assert.Error(t, (&StockAdjustment{Action: StockAdd, Quantity: 0}).Validate())
}

func TestApplicationStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationApproved))
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationCancelled))
	assert.False(t, ApplicationPending.CanTransitionTo(ApplicationPending))
	assert.False(t, ApplicationPending.CanTransitionTo("Archived"))
	assert.False(t, ApplicationApproved.CanTransitionTo(ApplicationRejected))
}

func TestBuildInstallments(t *testing.T) {
	quote, err := finance.BuildQuote(finance.LoanRequest{
		VehiclePrice:       10000,
		DownPaymentPercent: 20,
		TenureMonths:       12,
		AnnualInterestRate: 0.12,
	})
	require.NoError(t, err)

	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := BuildInstallments(quote.Schedule, start)
	require.Len(t, rows, 12)

	assert.Equal(t, 1, rows[0].PeriodIndex)
	assert.Equal(t, start.AddDate(0, 1, 0), rows[0].DueDate)
	assert.Equal(t, 0.0, rows[11].RemainingBalance)
	assert.Equal(t, 80.0, rows[0].InterestAmount)

	summary := SummarizeInstallments(rows)
	assert.Equal(t, 12, summary.TotalPayments)
	assert.InDelta(t, 8000, summary.TotalPrincipal, 0.05)
	assert.Equal(t, rows[11].DueDate.Format("2006-01-02"), summary.LastDueDate)
}

func TestNewFinanceApplication(t *testing.T) {
	req := &FinanceRequest{VehicleID: 4, DownPaymentPercent: 20, TenureMonths: 36}
	fq, err := finance.BuildQuote(req.LoanRequest(10000, 8.5))
	require.NoError(t, err)

	q := &FinanceQuote{
		Vehicle:        VehicleSummary{ID: 4, Price: 10000},
		TenureMonths:   36,
		InterestRate:   8.5,
		FinancingQuote: fq,
	}
	app := NewFinanceApplication("ref-1", 9, q, req)

	assert.Equal(t, ApplicationPending, app.Status)
	assert.Equal(t, finance.InsuranceComprehensive, app.InsuranceType)
	assert.Equal(t, 252.54, app.MonthlyInstallment)
	assert.Equal(t, 8000.0, app.LoanAmount)
	assert.Equal(t, 300.0, app.InsurancePremium)
	assert.Equal(t, 9, app.CustomerID)
}
