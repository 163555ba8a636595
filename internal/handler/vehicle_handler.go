package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

// VehicleHandler handles vehicle catalogue HTTP requests
type VehicleHandler struct {
	vehicleService service.VehicleService
	logger         *logrus.Logger
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(vehicleService service.VehicleService, logger *logrus.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// Create handles vehicle creation
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicleCreate models.VehicleCreate
	if err := decodeJSON(r, &vehicleCreate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	vehicle, err := h.vehicleService.Create(r.Context(), &vehicleCreate)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create vehicle", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "vehicle created successfully", vehicle)
}

// GetAll handles listing the catalogue
func (h *VehicleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get vehicles", err)
		return
	}

	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "vehicles retrieved successfully", vehicles)
}

// GetByID handles retrieving a vehicle
func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get vehicle", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "vehicle retrieved successfully", vehicle)
}

// Update handles partial vehicle updates
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vehicle ID")
		return
	}

	var update models.VehicleUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	vehicle, err := h.vehicleService.Update(r.Context(), id, &update)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update vehicle", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "vehicle updated successfully", vehicle)
}

// Delete handles vehicle deletion
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid vehicle ID")
		return
	}

	if err := h.vehicleService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, "delete vehicle", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "vehicle deleted successfully", nil)
}
