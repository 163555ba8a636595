package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/models"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

// PartHandler handles spare parts inventory HTTP requests
type PartHandler struct {
	partService service.PartService
	logger      *logrus.Logger
}

// NewPartHandler creates a new PartHandler
func NewPartHandler(partService service.PartService, logger *logrus.Logger) *PartHandler {
	return &PartHandler{
		partService: partService,
		logger:      logger,
	}
}

// Create handles part creation
func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var partCreate models.PartCreate
	if err := decodeJSON(r, &partCreate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	part, err := h.partService.Create(r.Context(), &partCreate)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create part", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "part created successfully", part)
}

// GetAll handles listing parts by category, low stock flag and search text
func (h *PartHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.PartFilter{
		Category: models.PartCategory(query.Get("category")),
		Search:   query.Get("search"),
	}

	if raw := query.Get("low_stock"); raw != "" {
		lowStock, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "low_stock must be true or false")
			return
		}
		filter.LowStock = lowStock
	}

	parts, err := h.partService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get parts", err)
		return
	}

	if parts == nil {
		parts = []*models.Part{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "parts retrieved successfully", parts)
}

// GetLowStock handles listing parts at or below their minimum level
func (h *PartHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.partService.GetLowStock(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get low stock parts", err)
		return
	}

	if parts == nil {
		parts = []*models.Part{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "low stock parts retrieved successfully", parts)
}

// GetByID handles retrieving a part
func (h *PartHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	part, err := h.partService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get part", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "part retrieved successfully", part)
}

// Update handles partial part updates
func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	var update models.PartUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	part, err := h.partService.Update(r.Context(), id, &update)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update part", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "part updated successfully", part)
}

// AdjustStock handles adding or removing stock
func (h *PartHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	var adj models.StockAdjustment
	if err := decodeJSON(r, &adj); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	part, err := h.partService.AdjustStock(r.Context(), id, &adj)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "adjust stock", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "stock updated successfully", part)
}

// Delete handles part deletion
func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	if err := h.partService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, "delete part", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "part deleted successfully", nil)
}
