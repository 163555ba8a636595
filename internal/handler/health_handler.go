package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"dealership-service/pkg/utils"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service can reach its database
type HealthHandler struct {
	db     pinger
	logger *logrus.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Check handles the health probe
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warnf("Health check failed: %v", err)
		utils.RespondWithError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "service is healthy", map[string]string{"status": "healthy"})
}
