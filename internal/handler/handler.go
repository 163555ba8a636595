package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"dealership-service/configs"
	"dealership-service/internal/finance"
	"dealership-service/internal/middleware"
	"dealership-service/internal/repository"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Repos    *repository.Repository
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	Vehicle  *VehicleHandler
	Customer *CustomerHandler
	Staff    *StaffHandler
	Part     *PartHandler
	Finance  *FinanceHandler
	Health   *HealthHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		Vehicle:  NewVehicleHandler(deps.Services.Vehicle, deps.Logger),
		Customer: NewCustomerHandler(deps.Services.Customer, deps.Logger),
		Staff:    NewStaffHandler(deps.Services.Staff, deps.Logger),
		Part:     NewPartHandler(deps.Services.Part, deps.Logger),
		Finance:  NewFinanceHandler(deps.Services.Finance, deps.Logger),
		Health:   NewHealthHandler(deps.Repos, deps.Logger),
	}
}

// respondWithServiceError maps a service error onto a status code. Only
// unexpected errors are logged; their text never reaches the client.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, action string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, finance.ErrInvalidArgument):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"action":     action,
		}).Errorf("Failed to %s: %v", action, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// pathID reads the numeric {id} route variable
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
