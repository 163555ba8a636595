package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dealership-service/configs"
	"dealership-service/internal/finance"
	"dealership-service/internal/metrics"
	"dealership-service/internal/models"
	"dealership-service/internal/repository"
)

// defaultMaxTenureMonths caps the schedule length when the config leaves it unset
const defaultMaxTenureMonths = 600

// FinanceSvc is an implementation of the service.FinanceService interface
type FinanceSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config configs.FinanceConfig
	cache  QuoteCache
	rates  RateService
	email  EmailService
	clock  func() time.Time
	tasks  *backgroundTasks
}

// NewFinanceService creates a new FinanceSvc
func NewFinanceService(deps Dependencies) *FinanceSvc {
	deps = deps.withRuntime()
	config := deps.Config.Finance
	if config.MaxTenureMonths <= 0 {
		config.MaxTenureMonths = defaultMaxTenureMonths
	}
	rates := deps.Rates
	if rates == nil {
		rates = NewRateService(deps)
	}
	email := deps.Email
	if email == nil {
		email = NewEmailService(deps)
	}
	return &FinanceSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: config,
		cache:  deps.Cache,
		rates:  rates,
		email:  email,
		clock:  deps.Clock,
		tasks:  deps.tasks,
	}
}

// quoteContext is a quote together with the records it was computed for
type quoteContext struct {
	vehicle  *models.Vehicle
	customer *models.Customer
	quote    *models.FinanceQuote
}

// Calculate quotes financing for a catalogue vehicle
func (s *FinanceSvc) Calculate(ctx context.Context, req *models.FinanceRequest) (*models.FinanceQuote, error) {
	qc, err := s.calculate(ctx, req)
	if err != nil {
		return nil, err
	}
	return qc.quote, nil
}

func (s *FinanceSvc) calculate(ctx context.Context, req *models.FinanceRequest) (*quoteContext, error) {
	if req.VehicleID <= 0 {
		return nil, validationError(errors.New("vehicle_id is required"))
	}
	// The schedule holds one row per month, so the tenure bounds its size
	if req.TenureMonths > s.config.MaxTenureMonths {
		metrics.QuotesCalculated.WithLabelValues("invalid").Inc()
		return nil, validationError(fmt.Errorf("tenure_months must be at most %d, got %d",
			s.config.MaxTenureMonths, req.TenureMonths))
	}

	vehicle, err := s.repos.Vehicle.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, lookupError("vehicle", err)
	}

	var customer *models.Customer
	if req.CustomerID != nil {
		customer, err = s.repos.Customer.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, lookupError("customer", err)
		}
	}

	ratePercent := s.resolveRate(ctx, req.InterestRate)
	loanReq := req.LoanRequest(vehicle.Price, ratePercent)
	if err := loanReq.Validate(); err != nil {
		metrics.QuotesCalculated.WithLabelValues("invalid").Inc()
		return nil, err
	}

	quote, err := s.buildQuote(ctx, loanReq)
	if err != nil {
		metrics.QuotesCalculated.WithLabelValues("invalid").Inc()
		return nil, err
	}
	metrics.QuotesCalculated.WithLabelValues("ok").Inc()

	result := &models.FinanceQuote{
		Vehicle:        vehicle.Summary(),
		TenureMonths:   loanReq.TenureMonths,
		InterestRate:   ratePercent,
		FinancingQuote: *quote,
		CalculatedAt:   s.clock(),
	}
	if customer != nil {
		summary := customer.Summary()
		result.Customer = &summary
	}

	return &quoteContext{vehicle: vehicle, customer: customer, quote: result}, nil
}

// resolveRate picks the annual rate in percent: the request's own, else the
// feed's base rate plus margin, else the configured default. A requested rate
// is checked by the engine along with the other loan terms.
func (s *FinanceSvc) resolveRate(ctx context.Context, requested *float64) float64 {
	if requested != nil {
		metrics.RateSource.WithLabelValues("request").Inc()
		return *requested
	}

	base, err := s.rates.BaseRate(ctx)
	if err == nil {
		metrics.RateSource.WithLabelValues("feed").Inc()
		return base + s.config.RateMargin
	}

	if !errors.Is(err, ErrRateFeedDisabled) {
		s.logger.Warnf("Failed to get base rate: %v. Using default rate of %.2f%%.", err, s.config.DefaultAnnualRate)
	}
	metrics.RateSource.WithLabelValues("default").Inc()
	return s.config.DefaultAnnualRate
}

// buildQuote serves a quote from the cache or computes and stores it. Cache
// failures only cost the lookup.
func (s *FinanceSvc) buildQuote(ctx context.Context, req finance.LoanRequest) (*finance.FinancingQuote, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, req)
		switch {
		case err != nil:
			metrics.QuoteCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warnf("Quote cache lookup failed: %v", err)
		case ok:
			metrics.QuoteCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.QuoteCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	quote, err := finance.BuildQuote(req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, req, &quote); err != nil {
			s.logger.Warnf("Failed to cache quote: %v", err)
		}
	}

	return &quote, nil
}

// CreateApplication recomputes the quote and stores it as a pending application
// with its installment schedule
func (s *FinanceSvc) CreateApplication(ctx context.Context, req *models.FinanceRequest) (*models.FinanceApplication, error) {
	if err := req.ValidateApplication(); err != nil {
		return nil, validationError(err)
	}

	qc, err := s.calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := qc.quote.CalculatedAt
	app := models.NewFinanceApplication(uuid.NewString(), qc.customer.ID, qc.quote, req)
	app.Installments = models.BuildInstallments(qc.quote.Schedule, now)

	id, err := s.repos.FinanceApplication.Create(ctx, app)
	if err != nil {
		return nil, writeError("create", "finance application", err)
	}
	app.ID = id
	app.CreatedAt = now
	app.UpdatedAt = now
	for _, installment := range app.Installments {
		installment.ApplicationID = id
	}
	app.Summary = models.SummarizeInstallments(app.Installments)

	metrics.ApplicationsCreated.Inc()
	s.logger.Infof("Finance application created: %d (%s) for customer %d", id, app.Reference, app.CustomerID)

	interest := models.Interest{
		VehicleID: &qc.vehicle.ID,
		Status:    models.InterestFinanceApplication,
		Notes:     fmt.Sprintf("Finance application submitted for %s %s", qc.vehicle.Model, qc.vehicle.Variant),
	}
	if err := s.repos.Customer.UpdateInterest(ctx, qc.customer.ID, interest); err != nil {
		s.logger.Errorf("Failed to update interest of customer %d for application %s: %v", qc.customer.ID, app.Reference, err)
	}

	customer, vehicle, confirmed := qc.customer, qc.vehicle, *app
	s.tasks.Go(func() {
		if err := s.email.SendApplicationConfirmation(context.Background(), customer, vehicle, &confirmed); err != nil {
			s.logger.Warnf("Failed to send application confirmation for %s: %v", confirmed.Reference, err)
		}
	})

	return app, nil
}

// GetApplication gets an application with its installments and their totals
func (s *FinanceSvc) GetApplication(ctx context.Context, id int) (*models.FinanceApplication, error) {
	app, err := s.repos.FinanceApplication.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("finance application", err)
	}

	installments, err := s.repos.Installment.GetByApplicationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}

	app.Installments = installments
	app.Summary = models.SummarizeInstallments(installments)

	return app, nil
}

// ListApplications returns applications, optionally only those in status
func (s *FinanceSvc) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error) {
	if status != "" && !status.Valid() {
		return nil, validationError(fmt.Errorf("unknown application status %q", status))
	}

	apps, err := s.repos.FinanceApplication.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list finance applications: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus decides a pending application
func (s *FinanceSvc) UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.FinanceApplication, error) {
	if !status.Valid() {
		return nil, validationError(fmt.Errorf("status must be Pending, Approved, Rejected or Cancelled, got %q", status))
	}

	app, err := s.repos.FinanceApplication.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("finance application", err)
	}

	if !app.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: application is %s and cannot become %s", ErrConflict, app.Status, status)
	}

	// the row only changes while it is still in the status we read
	if err := s.repos.FinanceApplication.UpdateStatus(ctx, id, app.Status, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: application %d was changed concurrently", ErrConflict, id)
		}
		return nil, fmt.Errorf("failed to update finance application status: %w", err)
	}

	previous := app.Status
	app.Status = status
	app.UpdatedAt = s.clock()

	s.logger.Infof("Finance application %d moved from %s to %s", id, previous, status)

	return app, nil
}
