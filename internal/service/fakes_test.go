package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"dealership-service/configs"
	"dealership-service/internal/finance"
	"dealership-service/internal/models"
	"dealership-service/internal/repository"
	"dealership-service/pkg/crypto"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func testConfig() *configs.Config {
	return &configs.Config{
		JWT:       configs.JWTConfig{Secret: "test-secret", TTL: 24},
		Email:     configs.EmailConfig{SenderEmail: "no-reply@test", PartsDesk: "parts@test"},
		Rates:     configs.RatesConfig{Timeout: time.Second, CacheTTL: time.Hour},
		Finance:   configs.FinanceConfig{DefaultAnnualRate: 9.5, RateMargin: 2.5, QuoteCacheTTL: time.Minute},
		Inventory: configs.InventoryConfig{DefaultLeadTimeDays: 7},
	}
}

type testEnv struct {
	repos  *repository.Repository
	store  *fakeStore
	email  *fakeEmail
	rates  *fakeRates
	logger *logrus.Logger
	hook   *test.Hook
	deps   Dependencies
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	logger, hook := test.NewNullLogger()

	repos := &repository.Repository{
		Vehicle:            &fakeVehicleRepo{store},
		Customer:           &fakeCustomerRepo{store},
		Staff:              &fakeStaffRepo{store},
		Part:               &fakePartRepo{store},
		FinanceApplication: &fakeApplicationRepo{store},
		Installment:        &fakeInstallmentRepo{store},
	}

	env := &testEnv{
		repos:  repos,
		store:  store,
		email:  &fakeEmail{},
		rates:  &fakeRates{err: ErrRateFeedDisabled},
		logger: logger,
		hook:   hook,
	}
	env.deps = Dependencies{
		Repos:  repos,
		Logger: logger,
		Config: testConfig(),
		Clock:  func() time.Time { return fixedNow },
		Email:  env.email,
		Rates:  env.rates,
	}
	return env
}

func (e *testEnv) staffService() *StaffSvc {
	svc := NewStaffService(e.deps)
	svc.hasher = crypto.NewPasswordHasherWithCost(4)
	return svc
}

// fakeStore keeps every table in memory
type fakeStore struct {
	mu           sync.Mutex
	nextID       int
	vehicles     map[int]*models.Vehicle
	customers    map[int]*models.Customer
	staff        map[int]*models.Staff
	attendance   []*models.AttendanceRecord
	parts        map[int]*models.Part
	applications map[int]*models.FinanceApplication
	installments map[int][]*models.Installment

	interestUpdates int
	failInterest    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles:     map[int]*models.Vehicle{},
		customers:    map[int]*models.Customer{},
		staff:        map[int]*models.Staff{},
		parts:        map[int]*models.Part{},
		applications: map[int]*models.FinanceApplication{},
		installments: map[int][]*models.Installment{},
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

type fakeVehicleRepo struct{ s *fakeStore }

func (r *fakeVehicleRepo) Create(ctx context.Context, v *models.Vehicle) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *v
	c.ID = r.s.id()
	r.s.vehicles[c.ID] = &c
	return c.ID, nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (r *fakeVehicleRepo) List(ctx context.Context) ([]*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Vehicle
	for _, v := range r.s.vehicles {
		c := *v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, v *models.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vehicles[v.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *v
	r.s.vehicles[v.ID] = &c
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.vehicles, id)
	return nil
}

type fakeCustomerRepo struct{ s *fakeStore }

func (r *fakeCustomerRepo) Create(ctx context.Context, c *models.Customer) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	cp.ID = r.s.id()
	r.s.customers[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Visits = append([]models.Visit{}, c.Visits...)
	return &cp, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Customer
	for _, c := range r.s.customers {
		if filter.Status != "" && c.Interest.Status != filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.customers[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *c
	cp.Visits = existing.Visits
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) UpdateInterest(ctx context.Context, id int, interest models.Interest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInterest != nil {
		return r.s.failInterest
	}
	c, ok := r.s.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Interest = interest
	r.s.interestUpdates++
	return nil
}

func (r *fakeCustomerRepo) AddVisit(ctx context.Context, v *models.Visit) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[v.CustomerID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	cp := *v
	cp.ID = r.s.id()
	c.Visits = append(c.Visits, cp)
	return cp.ID, nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

type fakeStaffRepo struct{ s *fakeStore }

func (r *fakeStaffRepo) Create(ctx context.Context, st *models.Staff) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.staff {
		if existing.EmployeeID == st.EmployeeID || existing.Contact.Email == st.Contact.Email {
			return 0, repository.ErrDuplicate
		}
	}
	cp := *st
	cp.ID = r.s.id()
	r.s.staff[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeStaffRepo) GetByID(ctx context.Context, id int) (*models.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	cp.Attendance = []models.AttendanceRecord{}
	for _, rec := range r.s.attendance {
		if rec.StaffID == id {
			cp.Attendance = append(cp.Attendance, *rec)
		}
	}
	return &cp, nil
}

func (r *fakeStaffRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.staff {
		if st.EmployeeID == employeeID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Staff
	for _, st := range r.s.staff {
		if filter.Role != "" && st.Role != filter.Role {
			continue
		}
		if filter.Active != nil && st.Active != *filter.Active {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeStaffRepo) Update(ctx context.Context, st *models.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.staff[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *st
	cp.PassHash = existing.PassHash
	r.s.staff[st.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.staff, id)
	return nil
}

func (r *fakeStaffRepo) GetAttendance(ctx context.Context, staffID int) ([]models.AttendanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.AttendanceRecord
	for _, rec := range r.s.attendance {
		if rec.StaffID == staffID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeStaffRepo) GetAttendanceByDate(ctx context.Context, staffID int, day time.Time) (*models.AttendanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.attendance {
		if rec.StaffID == staffID && rec.Date.Format("2006-01-02") == day.Format("2006-01-02") {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStaffRepo) CreateAttendance(ctx context.Context, rec *models.AttendanceRecord) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	cp.ID = r.s.id()
	r.s.attendance = append(r.s.attendance, &cp)
	return cp.ID, nil
}

func (r *fakeStaffRepo) UpdateAttendance(ctx context.Context, rec *models.AttendanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.attendance {
		if existing.ID == rec.ID {
			cp := *rec
			r.s.attendance[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePartRepo struct{ s *fakeStore }

func (r *fakePartRepo) Create(ctx context.Context, p *models.Part) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.parts {
		if existing.PartNumber == p.PartNumber {
			return 0, repository.ErrDuplicate
		}
	}
	cp := *p
	cp.ID = r.s.id()
	r.s.parts[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakePartRepo) GetByID(ctx context.Context, id int) (*models.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartRepo) List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Part
	for _, p := range r.s.parts {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.LowStock && !p.IsLowStock() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePartRepo) GetLowStock(ctx context.Context) ([]*models.Part, error) {
	return r.List(ctx, models.PartFilter{LowStock: true})
}

func (r *fakePartRepo) Update(ctx context.Context, p *models.Part) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.s.parts[p.ID] = &cp
	return nil
}

func (r *fakePartRepo) AdjustStock(ctx context.Context, id int, apply func(part *models.Part)) (*models.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	apply(p)
	cp := *p
	return &cp, nil
}

func (r *fakePartRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.parts, id)
	return nil
}

type fakeApplicationRepo struct{ s *fakeStore }

func (r *fakeApplicationRepo) Create(ctx context.Context, app *models.FinanceApplication) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *app
	cp.ID = r.s.id()
	cp.Installments = nil
	r.s.applications[cp.ID] = &cp
	var rows []*models.Installment
	for _, i := range app.Installments {
		row := *i
		row.ApplicationID = cp.ID
		rows = append(rows, &row)
	}
	r.s.installments[cp.ID] = rows
	return cp.ID, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id int) (*models.FinanceApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.FinanceApplication
	for _, app := range r.s.applications {
		if status != "" && app.Status != status {
			continue
		}
		cp := *app
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id int, from, to models.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok || app.Status != from {
		return repository.ErrNotFound
	}
	app.Status = to
	return nil
}

type fakeInstallmentRepo struct{ s *fakeStore }

func (r *fakeInstallmentRepo) GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.installments[applicationID], nil
}

// fakeEmail records notifications instead of sending them
type fakeEmail struct {
	mu           sync.Mutex
	err          error
	applications []*models.FinanceApplication
	alerts       []*models.Part
	digests      [][]*models.Part
}

func (e *fakeEmail) SendApplicationConfirmation(ctx context.Context, customer *models.Customer, vehicle *models.Vehicle, app *models.FinanceApplication) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applications = append(e.applications, app)
	return e.err
}

func (e *fakeEmail) SendReorderAlert(ctx context.Context, part *models.Part) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts = append(e.alerts, part)
	return e.err
}

func (e *fakeEmail) SendReorderDigest(ctx context.Context, parts []*models.Part) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.digests = append(e.digests, parts)
	return e.err
}

type fakeRates struct {
	rate  float64
	err   error
	calls int
}

func (r *fakeRates) BaseRate(ctx context.Context) (float64, error) {
	r.calls++
	return r.rate, r.err
}

// fakeCache is an in-memory QuoteCache
type fakeCache struct {
	entries map[finance.LoanRequest]finance.FinancingQuote
	getErr  error
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[finance.LoanRequest]finance.FinancingQuote{}}
}

func (c *fakeCache) Get(ctx context.Context, req finance.LoanRequest) (*finance.FinancingQuote, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	q, ok := c.entries[req]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &q, true, nil
}

func (c *fakeCache) Set(ctx context.Context, req finance.LoanRequest, quote *finance.FinancingQuote) error {
	c.sets++
	c.entries[req] = *quote
	return nil
}

var errBoom = errors.New("boom")
