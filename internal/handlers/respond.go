package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/middleware"
	"github.com/yukikurage/taskforge-api/internal/models"
)

// respond writes the success envelope
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindJSON decodes the request body into dst, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierrors.RespondWithError(c, apierrors.ErrInvalidInput)
		return false
	}
	return true
}

// parseIDParam reads a numeric path parameter, answering 400 on failure
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// currentUser returns the loaded user, answering 401 when there is none
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return nil, false
	}
	return user, true
}

// currentProject returns the project loaded by RequireProjectAccess
func currentProject(c *gin.Context) (*models.Project, bool) {
	project, ok := middleware.CurrentProject(c)
	if !ok {
		apierrors.Forbidden(c, "Project access required")
		return nil, false
	}
	return project, true
}
