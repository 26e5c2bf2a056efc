package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/dto"
	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/services"
)

// AdminHandler serves account administration and bulk shift creation.
type AdminHandler struct {
	usersService  *services.UsersService
	shiftsService *services.ShiftsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(usersService *services.UsersService, shiftsService *services.ShiftsService) *AdminHandler {
	return &AdminHandler{
		usersService:  usersService,
		shiftsService: shiftsService,
	}
}

// CreateUser registers a new account with a hashed password.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Name        string         `json:"name" binding:"required"`
		Email       string         `json:"email" binding:"required"`
		Password    string         `json:"password" binding:"required"`
		Role        models.AppRole `json:"role" binding:"required"`
		LocationIDs []string       `json:"locationIds"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.usersService.Create(c.Request.Context(), services.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		LocationIDs: req.LocationIDs,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": dto.ToUserDTO(user)})
}

// SetUserRole changes a user's application role.
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	type RoleRequest struct {
		Role models.AppRole `json:"role" binding:"required"`
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	user, err := h.usersService.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(user)})
}

// SetUserActive activates or deactivates an account.
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	type ActiveRequest struct {
		Active *bool `json:"active" binding:"required"`
	}

	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	user, err := h.usersService.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(user)})
}

// BulkCreateShifts creates or overwrites one shift per resolved date.
func (h *AdminHandler) BulkCreateShifts(c *gin.Context) {
	type BulkRequest struct {
		Type             models.ShiftType `json:"type"`
		Preset           string           `json:"preset"`
		DateFrom         string           `json:"dateFrom"`
		DateTo           string           `json:"dateTo"`
		CustomDates      []string         `json:"customDates"`
		Weekdays         []string         `json:"weekdays"`
		StartTime        string           `json:"startTime"`
		EndTime          string           `json:"endTime"`
		FlexibleEnd      bool             `json:"flexibleEnd"`
		LocationID       string           `json:"locationId" binding:"required"`
		MinimumPeople    int              `json:"minimumPeople"`
		RequiresApproval bool             `json:"requiresApproval"`
		Notes            string           `json:"notes"`
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	shifts, err := h.shiftsService.BulkCreate(c.Request.Context(), services.BulkShiftInput{
		Type:             req.Type,
		Preset:           req.Preset,
		DateFrom:         req.DateFrom,
		DateTo:           req.DateTo,
		CustomDates:      req.CustomDates,
		Weekdays:         req.Weekdays,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		FlexibleEnd:      req.FlexibleEnd,
		LocationID:       req.LocationID,
		MinimumPeople:    req.MinimumPeople,
		RequiresApproval: req.RequiresApproval,
		Notes:            req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLocationRequired),
			errors.Is(err, services.ErrNoTargetDates):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to create shifts")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": shifts})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidAppRole),
		errors.Is(err, services.ErrInvalidStaffRole),
		errors.Is(err, services.ErrInvalidAvailStatus),
		errors.Is(err, services.ErrInvalidDate):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
