package models

import (
	"time"

	"dealership-service/internal/finance"
	"dealership-service/pkg/money"
)

// Installment is one stored row of an application's repayment schedule
type Installment struct {
	ID               int       `json:"id" db:"id"`
	ApplicationID    int       `json:"application_id" db:"application_id"`
	PeriodIndex      int       `json:"period_index" db:"period_index"`
	DueDate          time.Time `json:"due_date" db:"due_date"`
	Payment          float64   `json:"payment" db:"payment"`
	PrincipalAmount  float64   `json:"principal_amount" db:"principal_amount"`
	InterestAmount   float64   `json:"interest_amount" db:"interest_amount"`
	RemainingBalance float64   `json:"remaining_balance" db:"remaining_balance"`
}

// InstallmentSummary totals a stored schedule
type InstallmentSummary struct {
	TotalPayments  int     `json:"total_payments"`
	TotalPrincipal float64 `json:"total_principal"`
	TotalInterest  float64 `json:"total_interest"`
	TotalAmount    float64 `json:"total_amount"`
	FirstDueDate   string  `json:"first_due_date,omitempty"`
	LastDueDate    string  `json:"last_due_date,omitempty"`
}

// BuildInstallments turns an engine schedule into rows due monthly, the first
// one month after start
func BuildInstallments(schedule []finance.InstallmentPeriod, start time.Time) []*Installment {
	installments := make([]*Installment, 0, len(schedule))
	for _, period := range schedule {
		installments = append(installments, &Installment{
			PeriodIndex:      period.PeriodIndex,
			DueDate:          start.AddDate(0, period.PeriodIndex, 0),
			Payment:          money.Round2(period.Payment),
			PrincipalAmount:  money.Round2(period.PrincipalComponent),
			InterestAmount:   money.Round2(period.InterestComponent),
			RemainingBalance: money.Round2(period.RemainingBalance),
		})
	}
	return installments
}

// SummarizeInstallments calculates totals for a stored schedule
func SummarizeInstallments(installments []*Installment) *InstallmentSummary {
	summary := &InstallmentSummary{TotalPayments: len(installments)}
	if len(installments) == 0 {
		return summary
	}

	principal := make([]float64, 0, len(installments))
	interest := make([]float64, 0, len(installments))
	amount := make([]float64, 0, len(installments))
	for _, i := range installments {
		principal = append(principal, i.PrincipalAmount)
		interest = append(interest, i.InterestAmount)
		amount = append(amount, i.Payment)
	}

	summary.TotalPrincipal = money.Sum(principal...)
	summary.TotalInterest = money.Sum(interest...)
	summary.TotalAmount = money.Sum(amount...)
	summary.FirstDueDate = installments[0].DueDate.Format("2006-01-02")
	summary.LastDueDate = installments[len(installments)-1].DueDate.Format("2006-01-02")
	return summary
}
