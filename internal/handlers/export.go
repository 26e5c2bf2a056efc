package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/services"
)

// ExportHandler produces the shifts CSV download for managers.
type ExportHandler struct {
	shifts      *repository.ShiftsRepository
	assignments *repository.AssignmentsRepository
	users       *repository.UsersRepository
	locations   *repository.LocationsRepository
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(
	shifts *repository.ShiftsRepository,
	assignments *repository.AssignmentsRepository,
	users *repository.UsersRepository,
	locations *repository.LocationsRepository,
) *ExportHandler {
	return &ExportHandler{
		shifts:      shifts,
		assignments: assignments,
		users:       users,
		locations:   locations,
	}
}

var exportHeader = []string{
	"date",
	"startTime",
	"endTime",
	"location",
	"type",
	"minimumPeople",
	"requiresApproval",
	"occupancyConfirmed",
	"occupancyPending",
	"assignedPeople",
}

// Shifts streams every shift as CSV, one row per shift, sorted by date
// then start time. Assigned people are folded into one cell as
// "Name (role/status)" entries separated by semicolons.
func (h *ExportHandler) Shifts(c *gin.Context) {
	ctx := c.Request.Context()
	shifts, err := h.shifts.LoadAll(ctx)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	assignments, err := h.assignments.LoadAll(ctx)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	users, err := h.users.LoadAll(ctx)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	locations, err := h.locations.LoadAll(ctx)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	userByID := make(map[string]*models.UserRecord, len(users))
	for _, user := range users {
		userByID[user.ID] = user
	}
	locationByID := make(map[string]*models.LocationRecord, len(locations))
	for _, location := range locations {
		locationByID[location.ID] = location
	}
	byShift := make(map[string][]*models.AssignmentRecord)
	for _, a := range assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].Date+shifts[i].StartTime < shifts[j].Date+shifts[j].StartTime
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	for _, shift := range shifts {
		list := byShift[shift.ID]
		occ := services.CountOccupancy(list)

		assigned := ""
		for i, a := range list {
			if i > 0 {
				assigned += "; "
			}
			name := a.UserID
			if user, ok := userByID[a.UserID]; ok {
				name = user.Name
			}
			assigned += name + " (" + string(a.StaffRole) + "/" + string(a.Status) + ")"
		}
		locationName := shift.LocationID
		if location, ok := locationByID[shift.LocationID]; ok {
			locationName = location.Name
		}
		requiresApproval := "no"
		if shift.RequiresApproval {
			requiresApproval = "yes"
		}

		record := []string{
			shift.Date,
			shift.StartTime,
			shift.EndTime,
			locationName,
			string(shift.Type),
			strconv.Itoa(shift.MinimumPeople),
			requiresApproval,
			strconv.Itoa(occ.Confirmed),
			strconv.Itoa(occ.Pending),
			assigned,
		}
		if err := w.Write(record); err != nil {
			apierrors.InternalError(c, "")
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shifts-export.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
