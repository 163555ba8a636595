package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealership-service/internal/middleware"
	"dealership-service/internal/models"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logger, hook
}

// serve routes a single request through a mux router so path variables resolve
func serve(t *testing.T, method, pattern, target, body string, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc(pattern, h).Methods(method)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

// serveAs is serve with an authenticated caller holding role
func serveAs(t *testing.T, role models.Role, method, pattern, target, body string, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return serve(t, method, pattern, target, body, func(w http.ResponseWriter, r *http.Request) {
		h(w, r.WithContext(middleware.WithStaff(r.Context(), 1, role)))
	})
}

type mockVehicleService struct{ mock.Mock }

func (m *mockVehicleService) Create(ctx context.Context, v *models.VehicleCreate) (*models.Vehicle, error) {
	args := m.Called(ctx, v)
	vehicle, _ := args.Get(0).(*models.Vehicle)
	return vehicle, args.Error(1)
}

func (m *mockVehicleService) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	vehicle, _ := args.Get(0).(*models.Vehicle)
	return vehicle, args.Error(1)
}

func (m *mockVehicleService) List(ctx context.Context) ([]*models.Vehicle, error) {
	args := m.Called(ctx)
	vehicles, _ := args.Get(0).([]*models.Vehicle)
	return vehicles, args.Error(1)
}

func (m *mockVehicleService) Update(ctx context.Context, id int, u *models.VehicleUpdate) (*models.Vehicle, error) {
	args := m.Called(ctx, id, u)
	vehicle, _ := args.Get(0).(*models.Vehicle)
	return vehicle, args.Error(1)
}

func (m *mockVehicleService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type mockStaffService struct{ mock.Mock }

func (m *mockStaffService) Register(ctx context.Context, reg *models.StaffRegistration) (*models.Staff, error) {
	args := m.Called(ctx, reg)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *mockStaffService) Login(ctx context.Context, login *models.StaffLogin) (*models.TokenResponse, error) {
	args := m.Called(ctx, login)
	token, _ := args.Get(0).(*models.TokenResponse)
	return token, args.Error(1)
}

func (m *mockStaffService) Create(ctx context.Context, s *models.StaffCreate) (*models.Staff, error) {
	args := m.Called(ctx, s)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *mockStaffService) GetByID(ctx context.Context, id int) (*models.Staff, error) {
	args := m.Called(ctx, id)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *mockStaffService) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, error) {
	args := m.Called(ctx, filter)
	members, _ := args.Get(0).([]*models.Staff)
	return members, args.Error(1)
}

func (m *mockStaffService) Update(ctx context.Context, id int, u *models.StaffUpdate) (*models.Staff, error) {
	args := m.Called(ctx, id, u)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *mockStaffService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStaffService) MarkAttendance(ctx context.Context, id int, req *models.AttendanceRequest) (*models.Staff, error) {
	args := m.Called(ctx, id, req)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

type mockPartService struct{ mock.Mock }

func (m *mockPartService) Create(ctx context.Context, p *models.PartCreate) (*models.Part, error) {
	args := m.Called(ctx, p)
	part, _ := args.Get(0).(*models.Part)
	return part, args.Error(1)
}

func (m *mockPartService) GetByID(ctx context.Context, id int) (*models.Part, error) {
	args := m.Called(ctx, id)
	part, _ := args.Get(0).(*models.Part)
	return part, args.Error(1)
}

func (m *mockPartService) List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error) {
	args := m.Called(ctx, filter)
	parts, _ := args.Get(0).([]*models.Part)
	return parts, args.Error(1)
}

func (m *mockPartService) GetLowStock(ctx context.Context) ([]*models.Part, error) {
	args := m.Called(ctx)
	parts, _ := args.Get(0).([]*models.Part)
	return parts, args.Error(1)
}

func (m *mockPartService) Update(ctx context.Context, id int, u *models.PartUpdate) (*models.Part, error) {
	args := m.Called(ctx, id, u)
	part, _ := args.Get(0).(*models.Part)
	return part, args.Error(1)
}

func (m *mockPartService) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.Part, error) {
	args := m.Called(ctx, id, adj)
	part, _ := args.Get(0).(*models.Part)
	return part, args.Error(1)
}

func (m *mockPartService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPartService) SendReorderDigest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockFinanceService struct{ mock.Mock }

func (m *mockFinanceService) Calculate(ctx context.Context, req *models.FinanceRequest) (*models.FinanceQuote, error) {
	args := m.Called(ctx, req)
	quote, _ := args.Get(0).(*models.FinanceQuote)
	return quote, args.Error(1)
}

func (m *mockFinanceService) CreateApplication(ctx context.Context, req *models.FinanceRequest) (*models.FinanceApplication, error) {
	args := m.Called(ctx, req)
	app, _ := args.Get(0).(*models.FinanceApplication)
	return app, args.Error(1)
}

func (m *mockFinanceService) GetApplication(ctx context.Context, id int) (*models.FinanceApplication, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*models.FinanceApplication)
	return app, args.Error(1)
}

func (m *mockFinanceService) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.FinanceApplication, error) {
	args := m.Called(ctx, status)
	apps, _ := args.Get(0).([]*models.FinanceApplication)
	return apps, args.Error(1)
}

func (m *mockFinanceService) UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.FinanceApplication, error) {
	args := m.Called(ctx, id, status)
	app, _ := args.Get(0).(*models.FinanceApplication)
	return app, args.Error(1)
}
