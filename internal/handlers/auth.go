package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/constants"
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if !startSession(c, user) {
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if !startSession(c, user) {
		return
	}
	respond(c, http.StatusOK, "Login successful", gin.H{"user": dto.ToUserDTO(*user)})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "User fetched", gin.H{"user": dto.ToUserDTO(*user)})
}

// UpdateProfile changes the user's name or email.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", gin.H{"user": dto.ToUserDTO(*updated)})
}

// ChangePassword replaces the user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(user.ID, req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// UpdateUser lets an Admin change another user's role or active flag.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	targetID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req services.AdminUpdateUserInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.authService.AdminUpdateUser(actor.ID, targetID, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated", gin.H{"user": dto.ToUserDTO(*updated)})
}

func startSession(c *gin.Context, user *models.User) bool {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}
