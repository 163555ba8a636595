package finance

// InsuranceType selects the base premium rate
type InsuranceType string

const (
	InsuranceComprehensive InsuranceType = "Comprehensive"
	InsuranceThirdParty    InsuranceType = "ThirdParty"
)

var insuranceBaseRates = map[InsuranceType]float64{
	InsuranceComprehensive: 0.03,
	InsuranceThirdParty:    0.015,
}

// ComputeInsurancePremium returns the annual premium for a vehicle. An empty
// insuranceType means Comprehensive.
func ComputeInsurancePremium(vehiclePrice float64, insuranceType InsuranceType, noClaimBonusPercent float64) (float64, error) {
	if err := validatePrice(vehiclePrice); err != nil {
		return 0, err
	}
	baseRate, err := insuranceBaseRate(insuranceType)
	if err != nil {
		return 0, err
	}
	if err := validateNoClaimBonus(noClaimBonusPercent); err != nil {
		return 0, err
	}

	return vehiclePrice * baseRate * (1 - noClaimBonusPercent/percentDivisor), nil
}

func insuranceBaseRate(insuranceType InsuranceType) (float64, error) {
	if insuranceType == "" {
		insuranceType = InsuranceComprehensive
	}
	rate, ok := insuranceBaseRates[insuranceType]
	if !ok {
		return 0, invalidArgument("insurance_type", "must be %s or %s, got %q",
			InsuranceComprehensive, InsuranceThirdParty, insuranceType)
	}
	return rate, nil
}

// Above 100% the premium would turn negative.
func validateNoClaimBonus(percent float64) error {
	if !isFinite(percent) || percent < 0 || percent > 100 {
		return invalidArgument("no_claim_bonus_percent", "must be between 0 and 100, got %v", percent)
	}
	return nil
}
