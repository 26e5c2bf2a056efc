package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pskladal/staff-shifts-api/internal/dto"
	"github.com/pskladal/staff-shifts-api/internal/models"
)

func TestAdminCreateUserEndpoint(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)
	admin := env.login(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"name":     "Jana",
		"email":    "jana@example.com",
		"password": "supersecret",
		"role":     "worker",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		User dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "jana@example.com", response.User.Email)
	require.True(t, response.User.Active)

	// duplicate email conflicts
	w = env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"name":     "Jana II",
		"email":    "jana@example.com",
		"password": "supersecret",
		"role":     "worker",
	}, admin)
	require.Equal(t, http.StatusConflict, w.Code)

	// short passwords are rejected
	w = env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"name":     "Petr",
		"email":    "petr@example.com",
		"password": "short",
		"role":     "worker",
	}, admin)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Petr", "manager@example.com", models.RoleManager)
	manager := env.login(t, "manager@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"name": "X", "email": "x@example.com", "password": "supersecret", "role": "worker",
	}, manager)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminBulkShiftsEndpoint(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Petr", "manager@example.com", models.RoleManager)
	manager := env.login(t, "manager@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/shifts/bulk", map[string]any{
		"preset":     "restaurant_to_16",
		"dateFrom":   "2026-07-06",
		"dateTo":     "2026-07-08",
		"locationId": "loc-1",
	}, manager)
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data []models.ShiftRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 3)
	require.Equal(t, "16:00", response.Data[0].EndTime)

	// missing location is a client error
	w = env.do(t, http.MethodPost, "/api/admin/shifts/bulk", map[string]any{
		"dateFrom": "2026-07-06",
	}, manager)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportShiftsCSV(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Petr", "manager@example.com", models.RoleManager)
	worker := env.createUser(t, "Jana Nováková", "jana@example.com", models.RoleWorker)
	manager := env.login(t, "manager@example.com")

	ctx := context.Background()
	location, err := env.locationsRepo.Create(ctx, &models.LocationRecord{Name: "Hlavní", Code: "HL"})
	require.NoError(t, err)
	shift, err := env.shiftsRepo.Create(ctx, &models.ShiftRecord{
		Date: "2026-07-04", StartTime: "10:00", EndTime: "22:00",
		LocationID: location.ID, Type: models.ShiftRestaurant, MinimumPeople: 3,
	})
	require.NoError(t, err)
	_, err = env.shiftsService.Signup(ctx, shift.ID, worker, models.StaffBar, nil)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/admin/export/shifts", nil, manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Header().Get("Content-Disposition"), "shifts-export.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "date,startTime,endTime,location,type,minimumPeople,requiresApproval,occupancyConfirmed,occupancyPending,assignedPeople", lines[0])
	require.Contains(t, lines[1], "2026-07-04,10:00,22:00,Hlavní,restaurant,3,no,1,0")
	require.Contains(t, lines[1], "Jana Nováková (bar/confirmed)")
}

func TestExportRequiresManager(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", models.RoleWorker)
	worker := env.login(t, "jana@example.com")

	w := env.do(t, http.MethodGet, "/api/admin/export/shifts", nil, worker)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMeSelfServiceEndpoints(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", models.RoleWorker)
	cookies := env.login(t, "jana@example.com")

	w := env.do(t, http.MethodPut, "/api/me/preferences", map[string]any{
		"preferredRoles": []string{"bar", "service"},
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		User dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, []models.StaffRole{models.StaffBar, models.StaffService}, response.User.PreferredRoles)

	w = env.do(t, http.MethodPut, "/api/me/availability", map[string]string{
		"date":   "2026-07-04",
		"status": "preferred",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.AvailabilityPreferred, response.User.AvailabilityByDate["2026-07-04"])

	w = env.do(t, http.MethodPut, "/api/me/availability", map[string]string{
		"date":   "2026-07-04",
		"status": "maybe",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
