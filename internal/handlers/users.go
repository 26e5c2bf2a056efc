package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pskladal/staff-shifts-api/internal/dto"
	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/services"
)

// UsersHandler serves worker self-service: role preferences and
// per-date availability.
type UsersHandler struct {
	usersService *services.UsersService
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(usersService *services.UsersService) *UsersHandler {
	return &UsersHandler{usersService: usersService}
}

// UpdatePreferences replaces the current user's preferred staff roles.
func (h *UsersHandler) UpdatePreferences(c *gin.Context) {
	type PreferencesRequest struct {
		PreferredRoles []models.StaffRole `json:"preferredRoles"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	updated, err := h.usersService.UpdatePreferredRoles(c.Request.Context(), user.ID, req.PreferredRoles)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(updated)})
}

// UpdateAvailability sets the current user's availability for one date.
// Other dates keep their values.
func (h *UsersHandler) UpdateAvailability(c *gin.Context) {
	type AvailabilityRequest struct {
		Date   string                    `json:"date" binding:"required"`
		Status models.AvailabilityStatus `json:"status" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	updated, err := h.usersService.UpdateAvailability(c.Request.Context(), user.ID, req.Date, req.Status)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(updated)})
}
