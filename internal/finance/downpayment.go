// Package finance computes vehicle financing quotes: down payment, equated
// monthly installment, amortization schedule and insurance premium.
//
// Every function here is a pure computation over its arguments. Nothing is
// stored, no clock is read and no I/O happens, so all calls are safe for
// concurrent use.
package finance

import "math"

const percentDivisor = 100.0

// DownPayment is the upfront split of a vehicle price
type DownPayment struct {
	DownPaymentAmount  float64 `json:"down_payment_amount"`
	LoanAmount         float64 `json:"loan_amount"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
}

// ComputeDownPayment splits the vehicle price into the amount paid upfront and
// the amount left to finance.
func ComputeDownPayment(vehiclePrice, downPaymentPercent float64) (DownPayment, error) {
	if err := validatePrice(vehiclePrice); err != nil {
		return DownPayment{}, err
	}
	if err := validateDownPaymentPercent(downPaymentPercent); err != nil {
		return DownPayment{}, err
	}

	amount := vehiclePrice * (downPaymentPercent / percentDivisor)

	return DownPayment{
		DownPaymentAmount:  amount,
		LoanAmount:         math.Max(vehiclePrice-amount, 0),
		DownPaymentPercent: downPaymentPercent,
	}, nil
}

func validatePrice(vehiclePrice float64) error {
	if !isFinite(vehiclePrice) {
		return invalidArgument("vehicle_price", "must be a finite number")
	}
	if vehiclePrice <= 0 {
		return invalidArgument("vehicle_price", "must be positive, got %v", vehiclePrice)
	}
	return nil
}

func validateDownPaymentPercent(percent float64) error {
	if !isFinite(percent) || percent < 0 || percent > 100 {
		return invalidArgument("down_payment_percent", "must be between 0 and 100, got %v", percent)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
