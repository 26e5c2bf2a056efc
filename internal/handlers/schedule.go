package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/services"
	"github.com/pskladal/staff-shifts-api/internal/utils"
)

// ScheduleHandler serves the read-only calendar views.
type ScheduleHandler struct {
	schedule *services.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedule *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Day returns every shift on one date with annotated assignments and
// occupancy.
func (h *ScheduleHandler) Day(c *gin.Context) {
	date := c.Param("date")
	if _, ok := utils.ParseDateKey(date); !ok {
		apierrors.BadRequest(c, "Date must be YYYY-MM-DD")
		return
	}
	views, err := h.schedule.DayDetails(c.Request.Context(), date)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// Summary returns per-day aggregates for a date range. The range
// defaults to the current month.
func (h *ScheduleHandler) Summary(c *gin.Context) {
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}
	summaries, err := h.schedule.DaySummaries(c.Request.Context(), from, to)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// My returns the current user's assignments joined with their shifts and
// locations.
func (h *ScheduleHandler) My(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	items, err := h.schedule.MyShifts(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Dashboard returns the range's day summaries together with locations
// and events.
func (h *ScheduleHandler) Dashboard(c *gin.Context) {
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}
	ctx, err := h.schedule.DashboardContext(c.Request.Context(), from, to)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ctx})
}

// rangeParams reads startDate/endDate, defaulting to the current month.
// It writes the error response itself when a parameter is malformed.
func rangeParams(c *gin.Context) (string, string, bool) {
	now := time.Now()
	from := c.Query("startDate")
	to := c.Query("endDate")
	if from == "" {
		from = utils.ToDateKey(utils.StartOfMonth(now))
	}
	if to == "" {
		to = utils.ToDateKey(utils.EndOfMonth(now))
	}
	if _, ok := utils.ParseDateKey(from); !ok {
		apierrors.BadRequest(c, "startDate must be YYYY-MM-DD")
		return "", "", false
	}
	if _, ok := utils.ParseDateKey(to); !ok {
		apierrors.BadRequest(c, "endDate must be YYYY-MM-DD")
		return "", "", false
	}
	return from, to, true
}
