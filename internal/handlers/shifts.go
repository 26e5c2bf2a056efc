package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/services"
)

// ShiftsHandler serves signups, manual assignment, occupancy, and
// assignment moderation.
type ShiftsHandler struct {
	shiftsService      *services.ShiftsService
	assignmentsService *services.AssignmentsService
	users              *repository.UsersRepository
}

// NewShiftsHandler creates a new ShiftsHandler.
func NewShiftsHandler(
	shiftsService *services.ShiftsService,
	assignmentsService *services.AssignmentsService,
	users *repository.UsersRepository,
) *ShiftsHandler {
	return &ShiftsHandler{
		shiftsService:      shiftsService,
		assignmentsService: assignmentsService,
		users:              users,
	}
}

// Signup signs the current user up for a shift. The staff role defaults
// to the user's first preferred role.
func (h *ShiftsHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		StaffRole models.StaffRole `json:"staffRole"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	staffRole := req.StaffRole
	if staffRole == "" {
		staffRole = user.PreferredRole()
	}

	assignment, err := h.shiftsService.Signup(c.Request.Context(), c.Param("id"), user, staffRole, nil)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": assignment})
}

// Unassign withdraws the current user's assignment from a shift.
func (h *ShiftsHandler) Unassign(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	removed, err := h.shiftsService.Unassign(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": removed})
}

// Assign puts a named user on a shift (manager manual assignment). The
// assignment is confirmed regardless of the shift's approval setting,
// unless the request asks for pending.
func (h *ShiftsHandler) Assign(c *gin.Context) {
	type AssignRequest struct {
		UserID    string                  `json:"userId" binding:"required"`
		StaffRole models.StaffRole        `json:"staffRole"`
		Status    models.AssignmentStatus `json:"status"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	target, found, err := h.users.FindByID(c.Request.Context(), req.UserID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	if !found {
		apierrors.NotFound(c, "User not found")
		return
	}

	staffRole := req.StaffRole
	if staffRole == "" {
		staffRole = target.PreferredRole()
	}
	status := models.AssignmentConfirmed
	if req.Status == models.AssignmentPending {
		status = models.AssignmentPending
	}

	assignment, err := h.shiftsService.Signup(c.Request.Context(), c.Param("id"), target, staffRole, &status)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": assignment})
}

// Occupancy returns a shift's assignment headcounts by status.
func (h *ShiftsHandler) Occupancy(c *gin.Context) {
	occupancy, err := h.shiftsService.Occupancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": occupancy})
}

// SetApproval flips whether new signups on the shift require manager
// approval.
func (h *ShiftsHandler) SetApproval(c *gin.Context) {
	type ApprovalRequest struct {
		RequiresApproval bool `json:"requiresApproval"`
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	shift, err := h.shiftsService.SetRequiresApproval(c.Request.Context(), c.Param("id"), req.RequiresApproval)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shift})
}

// SetAssignmentStatus confirms or un-confirms one assignment (manager
// moderation of pending signups).
func (h *ShiftsHandler) SetAssignmentStatus(c *gin.Context) {
	type StatusRequest struct {
		Status models.AssignmentStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	assignment, err := h.assignmentsService.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignment})
}

func respondShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrShiftNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidStaffRole),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
