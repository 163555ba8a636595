package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"dealership-service/internal/models"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

const maxFinanceBodyBytes = 64 << 10

const financeRequestProperties = `
	"vehicle_id":             {"type": "integer", "minimum": 1},
	"customer_id":            {"type": "integer", "minimum": 1},
	"down_payment_percent":   {"type": "number", "minimum": 0, "maximum": 100},
	"tenure_months":          {"type": "integer", "minimum": 1, "maximum": 1200},
	"interest_rate":          {"type": "number", "minimum": 0},
	"insurance_type":         {"type": "string", "enum": ["Comprehensive", "ThirdParty"]},
	"no_claim_bonus_percent": {"type": "number", "minimum": 0, "maximum": 100}`

var (
	calculateSchema = mustSchema(`{
		"type": "object",
		"properties": {` + financeRequestProperties + `},
		"required": ["vehicle_id", "tenure_months"]
	}`)

	applicationSchema = mustSchema(`{
		"type": "object",
		"properties": {` + financeRequestProperties + `},
		"required": ["vehicle_id", "customer_id", "tenure_months"]
	}`)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid finance request schema: %v", err))
	}
	return schema
}

// FinanceHandler handles financing quote and application HTTP requests
type FinanceHandler struct {
	financeService service.FinanceService
	logger         *logrus.Logger
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(financeService service.FinanceService, logger *logrus.Logger) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		logger:         logger,
	}
}

// Calculate handles quote calculation without persisting anything
func (h *FinanceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.FinanceRequest
	if !h.readRequest(w, r, calculateSchema, &req) {
		return
	}

	quote, err := h.financeService.Calculate(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "calculate finance", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "finance calculated successfully", quote)
}

// CreateApplication handles submitting a finance application
func (h *FinanceHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req models.FinanceRequest
	if !h.readRequest(w, r, applicationSchema, &req) {
		return
	}

	app, err := h.financeService.CreateApplication(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create finance application", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "finance application created successfully", app)
}

// ListApplications handles listing applications, optionally by status
func (h *FinanceHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	status := models.ApplicationStatus(r.URL.Query().Get("status"))

	apps, err := h.financeService.ListApplications(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get finance applications", err)
		return
	}

	if apps == nil {
		apps = []*models.FinanceApplication{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "finance applications retrieved successfully", apps)
}

// GetApplication handles retrieving an application with its installments
func (h *FinanceHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	app, err := h.financeService.GetApplication(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get finance application", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "finance application retrieved successfully", app)
}

// UpdateApplicationStatus handles approving, rejecting or cancelling an application
func (h *FinanceHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var update models.ApplicationStatusUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	app, err := h.financeService.UpdateApplicationStatus(r.Context(), id, update.Status)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update finance application", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "finance application updated successfully", app)
}

// readRequest validates the body against schema before decoding it into v.
// It writes the error response itself and reports whether the caller may go on.
func (h *FinanceHandler) readRequest(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, v interface{}) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFinanceBodyBytes))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		utils.RespondWithError(w, http.StatusBadRequest, "validation failed: "+strings.Join(errs, "; "))
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}

	return true
}
