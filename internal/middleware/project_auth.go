package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/constants"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/services"
)

// RequireProjectAccess checks that the current user is the owner or a
// member of the project in the :id parameter, or an Admin
func RequireProjectAccess(membership *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get project ID from URL parameter
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		project, _, err := membership.RequireAccess(user, projectID)
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		// Store project in context
		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// CurrentProject returns the project set by RequireProjectAccess. Its
// members are loaded.
func CurrentProject(c *gin.Context) (*models.Project, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := v.(*models.Project)
	return project, ok
}
