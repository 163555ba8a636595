package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *logrus.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// Create handles customer creation
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var customerCreate models.CustomerCreate
	if err := decodeJSON(r, &customerCreate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	customer, err := h.customerService.Create(r.Context(), &customerCreate)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create customer", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "customer created successfully", customer)
}

// GetAll handles listing customers with optional status and search filters
func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.CustomerFilter{
		Status: models.InterestStatus(query.Get("status")),
		Search: query.Get("search"),
	}

	customers, err := h.customerService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get customers", err)
		return
	}

	if customers == nil {
		customers = []*models.Customer{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customers retrieved successfully", customers)
}

// GetByID handles retrieving a customer with their visits
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get customer", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer retrieved successfully", customer)
}

// Update handles partial customer updates, optionally logging a visit
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var update models.CustomerUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, &update)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update customer", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer updated successfully", customer)
}

// Delete handles customer deletion
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, "delete customer", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer deleted successfully", nil)
}
