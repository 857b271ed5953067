package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/services"
)

// AnalyticsHandler serves the dashboard summary.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetDashboard summarizes the projects visible to the user.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.Summarize(user)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard fetched", summary)
}
