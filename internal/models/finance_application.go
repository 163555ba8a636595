package models

import (
	"errors"
	"time"

	"dealership-service/internal/finance"
	"dealership-service/pkg/money"
)

// ApplicationStatus defines the status of a finance application
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "Pending"
	ApplicationApproved  ApplicationStatus = "Approved"
	ApplicationRejected  ApplicationStatus = "Rejected"
	ApplicationCancelled ApplicationStatus = "Cancelled"
)

// FinanceApplication is a persisted financing request for one vehicle and customer
type FinanceApplication struct {
	ID                  int                   `json:"id" db:"id"`
	Reference           string                `json:"reference" db:"reference"`
	VehicleID           int                   `json:"vehicle_id" db:"vehicle_id"`
	CustomerID          int                   `json:"customer_id" db:"customer_id"`
	VehiclePrice        float64               `json:"vehicle_price" db:"vehicle_price"`
	DownPaymentPercent  float64               `json:"down_payment_percent" db:"down_payment_percent"`
	DownPaymentAmount   float64               `json:"down_payment_amount" db:"down_payment_amount"`
	LoanAmount          float64               `json:"loan_amount" db:"loan_amount"`
	InterestRate        float64               `json:"interest_rate" db:"interest_rate"` // annual, percent
	TenureMonths        int                   `json:"tenure_months" db:"tenure_months"`
	MonthlyInstallment  float64               `json:"monthly_installment" db:"monthly_installment"`
	TotalInterest       float64               `json:"total_interest" db:"total_interest"`
	TotalPayment        float64               `json:"total_payment" db:"total_payment"`
	InsuranceType       finance.InsuranceType `json:"insurance_type" db:"insurance_type"`
	NoClaimBonusPercent float64               `json:"no_claim_bonus_percent" db:"no_claim_bonus_percent"`
	InsurancePremium    float64               `json:"insurance_premium" db:"insurance_premium"`
	Status              ApplicationStatus     `json:"status" db:"status"`
	CreatedAt           time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at" db:"updated_at"`
	Installments        []*Installment        `json:"installments,omitempty"`
	Summary             *InstallmentSummary   `json:"summary,omitempty"`
}

// FinanceRequest is the body of both the calculate and the application endpoints.
// InterestRate is an annual percentage; nil lets the service pick the rate.
type FinanceRequest struct {
	VehicleID           int                   `json:"vehicle_id"`
	CustomerID          *int                  `json:"customer_id,omitempty"`
	DownPaymentPercent  float64               `json:"down_payment_percent"`
	TenureMonths        int                   `json:"tenure_months"`
	InterestRate        *float64              `json:"interest_rate,omitempty"`
	InsuranceType       finance.InsuranceType `json:"insurance_type,omitempty"`
	NoClaimBonusPercent float64               `json:"no_claim_bonus_percent,omitempty"`
}

// FinanceQuote is a calculated quote together with what it was calculated for
type FinanceQuote struct {
	Vehicle      VehicleSummary   `json:"vehicle"`
	Customer     *CustomerSummary `json:"customer"`
	TenureMonths int              `json:"tenure_months"`
	InterestRate float64          `json:"interest_rate"`
	finance.FinancingQuote
	CalculatedAt time.Time `json:"calculated_at"`
}

// ApplicationStatusUpdate is the body of a status change
type ApplicationStatusUpdate struct {
	Status ApplicationStatus `json:"status"`
}

// ValidateApplication checks the fields an application needs on top of a quote
func (r *FinanceRequest) ValidateApplication() error {
	if r.VehicleID <= 0 {
		return errors.New("vehicle_id is required")
	}
	if r.CustomerID == nil || *r.CustomerID <= 0 {
		return errors.New("customer_id is required")
	}
	return nil
}

// LoanRequest converts the request into engine input for the given price and
// annual rate in percent
func (r *FinanceRequest) LoanRequest(vehiclePrice, ratePercent float64) finance.LoanRequest {
	return finance.LoanRequest{
		VehiclePrice:        vehiclePrice,
		DownPaymentPercent:  r.DownPaymentPercent,
		TenureMonths:        r.TenureMonths,
		AnnualInterestRate:  ratePercent / 100,
		InsuranceType:       r.InsuranceType,
		NoClaimBonusPercent: r.NoClaimBonusPercent,
	}
}

// NewFinanceApplication builds a pending application from a computed quote.
// Amounts are rounded to cents for storage.
func NewFinanceApplication(reference string, customerID int, q *FinanceQuote, r *FinanceRequest) *FinanceApplication {
	insuranceType := r.InsuranceType
	if insuranceType == "" {
		insuranceType = finance.InsuranceComprehensive
	}

	return &FinanceApplication{
		Reference:           reference,
		VehicleID:           q.Vehicle.ID,
		CustomerID:          customerID,
		VehiclePrice:        money.Round2(q.Vehicle.Price),
		DownPaymentPercent:  q.DownPayment.DownPaymentPercent,
		DownPaymentAmount:   money.Round2(q.DownPayment.DownPaymentAmount),
		LoanAmount:          money.Round2(q.DownPayment.LoanAmount),
		InterestRate:        q.InterestRate,
		TenureMonths:        q.TenureMonths,
		MonthlyInstallment:  money.Round2(q.MonthlyInstallment),
		TotalInterest:       money.Round2(q.TotalInterest),
		TotalPayment:        money.Round2(q.TotalPayment),
		InsuranceType:       insuranceType,
		NoClaimBonusPercent: r.NoClaimBonusPercent,
		InsurancePremium:    money.Round2(q.InsurancePremium),
		Status:              ApplicationPending,
	}
}

// Valid reports whether s is a known application status
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an application in status s may move to next.
// Only pending applications are decided.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return s == ApplicationPending && next != ApplicationPending && next.Valid()
}
