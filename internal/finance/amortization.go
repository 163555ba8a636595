package finance

import "math"

const monthsPerYear = 12

// InstallmentPeriod is one row of an amortization schedule: what a single
// payment contributes to principal and interest and what is left to repay.
type InstallmentPeriod struct {
	PeriodIndex        int     `json:"period_index"`
	Payment            float64 `json:"payment"`
	PrincipalComponent float64 `json:"principal_component"`
	InterestComponent  float64 `json:"interest_component"`
	RemainingBalance   float64 `json:"remaining_balance"`
}

// Amortization holds the equated monthly installment of a fixed-rate loan,
// its totals and the period-by-period schedule.
type Amortization struct {
	MonthlyInstallment float64             `json:"monthly_installment"`
	TotalInterest      float64             `json:"total_interest"`
	TotalPayment       float64             `json:"total_payment"`
	Schedule           []InstallmentPeriod `json:"schedule"`
}

// ComputeAmortization computes the equated monthly installment for principal
// borrowed at annualRate (a fraction, 0.085 for 8.5%) over tenureMonths and
// breaks every period down into principal and interest.
func ComputeAmortization(principal, annualRate float64, tenureMonths int) (Amortization, error) {
	if err := validateLoanTerms(principal, annualRate, tenureMonths); err != nil {
		return Amortization{}, err
	}

	monthlyRate := annualRate / monthsPerYear
	installment := monthlyInstallment(principal, monthlyRate, tenureMonths)
	totalPayment := installment * float64(tenureMonths)

	return Amortization{
		MonthlyInstallment: installment,
		TotalInterest:      totalPayment - principal,
		TotalPayment:       totalPayment,
		Schedule:           buildSchedule(principal, monthlyRate, installment, tenureMonths),
	}, nil
}

func validateLoanTerms(principal, annualRate float64, tenureMonths int) error {
	if !isFinite(principal) || principal < 0 {
		return invalidArgument("principal", "must be a non-negative number, got %v", principal)
	}
	if !isFinite(annualRate) || annualRate < 0 {
		return invalidArgument("annual_interest_rate", "must be a non-negative number, got %v", annualRate)
	}
	if tenureMonths < 1 {
		return invalidArgument("tenure_months", "must be a positive integer, got %d", tenureMonths)
	}
	return nil
}

// monthlyInstallment uses P*r/(1-(1+r)^-n), which equals the usual
// P*r*(1+r)^n/((1+r)^n-1) but stays finite when (1+r)^n overflows.
func monthlyInstallment(principal, monthlyRate float64, tenureMonths int) float64 {
	n := float64(tenureMonths)
	if monthlyRate == 0 {
		return principal / n
	}

	discount := 1 - math.Pow(1+monthlyRate, -n)
	if discount == 0 {
		// rate below float64 resolution: 1+r rounds to 1
		return principal / n
	}
	return principal * monthlyRate / discount
}

// buildSchedule folds the running balance over periods 1..tenureMonths. The
// balance lives only inside this call; the returned slice is the only output.
// The last period retires whatever balance is left, so its payment differs
// from the installment by float drift, or by the whole principal when
// (1+r)^-n is below float64 resolution and the installment covers interest only.
func buildSchedule(principal, monthlyRate, installment float64, tenureMonths int) []InstallmentPeriod {
	schedule := make([]InstallmentPeriod, 0, tenureMonths)

	balance := principal
	for period := 1; period <= tenureMonths; period++ {
		interest := balance * monthlyRate
		payment := installment
		principalPaid := installment - interest

		if period == tenureMonths {
			principalPaid = balance
			payment = principalPaid + interest
		}

		balance -= principalPaid
		if balance < 0 || period == tenureMonths {
			balance = 0
		}

		schedule = append(schedule, InstallmentPeriod{
			PeriodIndex:        period,
			Payment:            payment,
			PrincipalComponent: principalPaid,
			InterestComponent:  interest,
			RemainingBalance:   balance,
		})
	}

	return schedule
}
