package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/middleware"
	"dealership-service/internal/models"
	"dealership-service/internal/service"
	"dealership-service/pkg/utils"
)

// StaffHandler handles staff, registration and login HTTP requests
type StaffHandler struct {
	staffService service.StaffService
	logger       *logrus.Logger
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService service.StaffService, logger *logrus.Logger) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
		logger:       logger,
	}
}

// Register handles staff registration with a password
func (h *StaffHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.StaffRegistration
	if err := decodeJSON(r, &reg); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	staff, err := h.staffService.Register(r.Context(), &reg)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "register staff", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "staff registered successfully", staff)
}

// Login handles staff login
func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	var login models.StaffLogin
	if err := decodeJSON(r, &login); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := h.staffService.Login(r.Context(), &login)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "log in", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "login successful", token)
}

// Create handles adding a staff member without credentials
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var staffCreate models.StaffCreate
	if err := decodeJSON(r, &staffCreate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if !canAssignRole(r, staffCreate.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "only an admin can assign the "+string(staffCreate.Role)+" role")
		return
	}

	staff, err := h.staffService.Create(r.Context(), &staffCreate)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "create staff", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "staff created successfully", staff)
}

// GetAll handles listing staff with optional role and active filters
func (h *StaffHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.StaffFilter{Role: models.Role(query.Get("role"))}

	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		filter.Active = &active
	}

	members, err := h.staffService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get staff", err)
		return
	}

	if members == nil {
		members = []*models.Staff{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "staff retrieved successfully", members)
}

// GetByID handles retrieving a staff member with attendance
func (h *StaffHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	staff, err := h.staffService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "get staff member", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "staff retrieved successfully", staff)
}

// Update handles partial staff updates
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	var update models.StaffUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if update.Role != nil && !canAssignRole(r, *update.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "only an admin can assign the "+string(*update.Role)+" role")
		return
	}

	staff, err := h.staffService.Update(r.Context(), id, &update)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "update staff", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "staff updated successfully", staff)
}

// Delete handles staff deletion
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	if err := h.staffService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, "delete staff", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "staff member deleted", nil)
}

// MarkAttendance handles marking today's attendance. An empty body marks the
// staff member present now.
func (h *StaffHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	var req models.AttendanceRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}

	staff, err := h.staffService.MarkAttendance(r.Context(), id, &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "mark attendance", err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "attendance marked successfully", staff)
}

// canAssignRole reports whether the authenticated caller may give role to a
// staff member. Privileged roles are handed out by admins only.
func canAssignRole(r *http.Request, role models.Role) bool {
	if !role.Privileged() {
		return true
	}
	caller, _ := middleware.RoleFromContext(r.Context())
	return caller == models.RoleAdmin
}
