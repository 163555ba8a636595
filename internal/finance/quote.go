package finance

// LoanRequest carries everything needed to price one financing offer. Rates
// and percentages are plain numbers; AnnualInterestRate is a fraction.
type LoanRequest struct {
	VehiclePrice        float64       `json:"vehicle_price"`
	DownPaymentPercent  float64       `json:"down_payment_percent"`
	TenureMonths        int           `json:"tenure_months"`
	AnnualInterestRate  float64       `json:"annual_interest_rate"`
	InsuranceType       InsuranceType `json:"insurance_type,omitempty"`
	NoClaimBonusPercent float64       `json:"no_claim_bonus_percent,omitempty"`
}

// FinancingQuote is the priced offer for one LoanRequest: the down payment
// split, the loan totals, the insurance premium and the full schedule.
type FinancingQuote struct {
	DownPayment        DownPayment         `json:"down_payment"`
	MonthlyInstallment float64             `json:"monthly_installment"`
	TotalInterest      float64             `json:"total_interest"`
	TotalPayment       float64             `json:"total_payment"`
	InsurancePremium   float64             `json:"insurance_premium"`
	Schedule           []InstallmentPeriod `json:"schedule"`
}

// Validate checks every field of the request and reports the first violation.
func (r LoanRequest) Validate() error {
	if err := validatePrice(r.VehiclePrice); err != nil {
		return err
	}
	if err := validateDownPaymentPercent(r.DownPaymentPercent); err != nil {
		return err
	}
	if r.TenureMonths < 1 {
		return invalidArgument("tenure_months", "must be a positive integer, got %d", r.TenureMonths)
	}
	if !isFinite(r.AnnualInterestRate) || r.AnnualInterestRate < 0 {
		return invalidArgument("annual_interest_rate", "must be a non-negative number, got %v", r.AnnualInterestRate)
	}
	if _, err := insuranceBaseRate(r.InsuranceType); err != nil {
		return err
	}
	return validateNoClaimBonus(r.NoClaimBonusPercent)
}

// BuildQuote validates the request up front and then derives the down payment,
// the amortization of the financed amount and the insurance premium.
func BuildQuote(r LoanRequest) (FinancingQuote, error) {
	if err := r.Validate(); err != nil {
		return FinancingQuote{}, err
	}

	downPayment, err := ComputeDownPayment(r.VehiclePrice, r.DownPaymentPercent)
	if err != nil {
		return FinancingQuote{}, err
	}

	amortization, err := ComputeAmortization(downPayment.LoanAmount, r.AnnualInterestRate, r.TenureMonths)
	if err != nil {
		return FinancingQuote{}, err
	}

	premium, err := ComputeInsurancePremium(r.VehiclePrice, r.InsuranceType, r.NoClaimBonusPercent)
	if err != nil {
		return FinancingQuote{}, err
	}

	return FinancingQuote{
		DownPayment:        downPayment,
		MonthlyInstallment: amortization.MonthlyInstallment,
		TotalInterest:      amortization.TotalInterest,
		TotalPayment:       amortization.TotalPayment,
		InsurancePremium:   premium,
		Schedule:           amortization.Schedule,
	}, nil
}
