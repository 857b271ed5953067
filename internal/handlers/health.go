package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/middleware"
	"gorm.io/gorm"
)

// HealthHandler reports whether the server can reach its database.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings the database.
func (h *HealthHandler) Check(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		middleware.Logger(c).Warn("health check failed", "error", err)
		apierrors.RespondWithError(c, apierrors.ServiceUnavailableError("Database unavailable"))
		return
	}

	respond(c, http.StatusOK, "ok", gin.H{"status": "ok", "time": time.Now().UTC()})
}
