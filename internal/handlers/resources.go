package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/services"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// policy names the app roles allowed to read and write one resource.
type policy struct {
	read  []models.AppRole
	write []models.AppRole
}

var (
	allRoles  = []models.AppRole{models.RoleWorker, models.RoleManager, models.RoleAdmin}
	managerUp = []models.AppRole{models.RoleManager, models.RoleAdmin}
	adminOnly = []models.AppRole{models.RoleAdmin}
)

var resourcePolicies = map[string]policy{
	constants.ResourceUsers:       {read: adminOnly, write: adminOnly},
	constants.ResourceLocations:   {read: allRoles, write: adminOnly},
	constants.ResourceEvents:      {read: allRoles, write: managerUp},
	constants.ResourceShifts:      {read: allRoles, write: managerUp},
	constants.ResourceAssignments: {read: managerUp, write: managerUp},
}

// crud is the slice of a repository (or cascading service) the generic
// resource API needs.
type crud[T storage.Record] interface {
	LoadAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, bool, error)
	Create(ctx context.Context, input T) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// resource is the type-erased face of one resource collection. Records
// cross it as generic JSON objects so one set of handlers can serve all
// five collections.
type resource interface {
	List(ctx context.Context) ([]map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, bool, error)
	Create(ctx context.Context, body []byte) (map[string]any, error)
	Update(ctx context.Context, id string, patch map[string]any) (map[string]any, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type resourceAdapter[T storage.Record] struct {
	crud   crud[T]
	redact func(map[string]any)
}

func newResource[T storage.Record](c crud[T], redact func(map[string]any)) resource {
	return &resourceAdapter[T]{crud: c, redact: redact}
}

func (r *resourceAdapter[T]) serialize(record T) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if r.redact != nil {
		r.redact(out)
	}
	return out, nil
}

func (r *resourceAdapter[T]) List(ctx context.Context) ([]map[string]any, error) {
	rows, err := r.crud.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		serialized, err := r.serialize(row)
		if err != nil {
			return nil, err
		}
		out = append(out, serialized)
	}
	return out, nil
}

func (r *resourceAdapter[T]) Get(ctx context.Context, id string) (map[string]any, bool, error) {
	row, found, err := r.crud.FindByID(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	serialized, err := r.serialize(row)
	if err != nil {
		return nil, false, err
	}
	return serialized, true, nil
}

func (r *resourceAdapter[T]) Create(ctx context.Context, body []byte) (map[string]any, error) {
	input := newRecord[T]()
	if err := json.Unmarshal(body, input); err != nil {
		return nil, err
	}
	created, err := r.crud.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return r.serialize(created)
}

func (r *resourceAdapter[T]) Update(ctx context.Context, id string, patch map[string]any) (map[string]any, bool, error) {
	updated, found, err := r.crud.Update(ctx, id, patch)
	if err != nil || !found {
		return nil, false, err
	}
	serialized, err := r.serialize(updated)
	if err != nil {
		return nil, false, err
	}
	return serialized, true, nil
}

func (r *resourceAdapter[T]) Delete(ctx context.Context, id string) (bool, error) {
	return r.crud.Delete(ctx, id)
}

// newRecord allocates a fresh record of the adapter's element type.
func newRecord[T storage.Record]() T {
	var zero T
	return reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
}

// shiftsResource serves shifts through the repository for reads and
// writes, except deletion, which cascades through the shift's
// assignments.
type shiftsResource struct {
	*repository.ShiftsRepository
	cascade *services.ShiftsService
}

func (r shiftsResource) Delete(ctx context.Context, id string) (bool, error) {
	return r.cascade.DeleteCascade(ctx, id)
}

func redactUser(row map[string]any) {
	delete(row, "passwordHash")
}

// ResourcesHandler serves the generic per-resource CRUD API.
type ResourcesHandler struct {
	resources map[string]resource
}

// NewResourcesHandler creates a new ResourcesHandler. Events go through
// the events service so creation and deletion carry the shift cascade;
// shift deletion cascades through assignments the same way.
func NewResourcesHandler(
	users *repository.UsersRepository,
	locations *repository.LocationsRepository,
	events *services.EventsService,
	shifts *repository.ShiftsRepository,
	shiftsService *services.ShiftsService,
	assignments *repository.AssignmentsRepository,
) *ResourcesHandler {
	return &ResourcesHandler{
		resources: map[string]resource{
			constants.ResourceUsers:       newResource[*models.UserRecord](users, redactUser),
			constants.ResourceLocations:   newResource[*models.LocationRecord](locations, nil),
			constants.ResourceEvents:      newResource[*models.EventRecord](events, nil),
			constants.ResourceShifts:      newResource[*models.ShiftRecord](shiftsResource{shifts, shiftsService}, nil),
			constants.ResourceAssignments: newResource[*models.AssignmentRecord](assignments, nil),
		},
	}
}

// Register mounts the CRUD routes for every resource under the given
// authenticated group. Routes are registered per resource name, so the
// role check is decided at mount time.
func (h *ResourcesHandler) Register(api *gin.RouterGroup) {
	for name, res := range h.resources {
		p := resourcePolicies[name]
		api.GET("/"+name, middleware.RequireRoles(p.read...), h.list(name, res))
		api.POST("/"+name, middleware.RequireRoles(p.write...), h.create(name, res))
		api.GET("/"+name+"/:id", middleware.RequireRoles(p.read...), h.get(res))
		api.PATCH("/"+name+"/:id", middleware.RequireRoles(p.write...), h.update(res))
		api.DELETE("/"+name+"/:id", middleware.RequireRoles(p.write...), h.remove(res))
	}
}

// listFilters narrow list responses by the date, startDate, endDate and
// locationId query parameters. A filter only applies to rows that carry
// the field.
type listFilters struct {
	date       string
	startDate  string
	endDate    string
	locationID string
}

func (f listFilters) match(row map[string]any) bool {
	if date, ok := row["date"].(string); ok {
		if f.date != "" && date != f.date {
			return false
		}
		if f.startDate != "" && date < f.startDate {
			return false
		}
		if f.endDate != "" && date > f.endDate {
			return false
		}
	}
	if locationID, ok := row["locationId"].(string); ok {
		if f.locationID != "" && locationID != f.locationID {
			return false
		}
	}
	return true
}

func (h *ResourcesHandler) list(name string, res resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := res.List(c.Request.Context())
		if err != nil {
			apierrors.InternalError(c, "Failed to load "+name)
			return
		}
		filters := listFilters{
			date:       c.Query("date"),
			startDate:  c.Query("startDate"),
			endDate:    c.Query("endDate"),
			locationID: c.Query("locationId"),
		}
		filtered := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			if filters.match(row) {
				filtered = append(filtered, row)
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": filtered})
	}
}

func (h *ResourcesHandler) get(res resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, found, err := res.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			apierrors.InternalError(c, "")
			return
		}
		if !found {
			apierrors.NotFound(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": row})
	}
}

func (h *ResourcesHandler) create(name string, res resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if name == constants.ResourceUsers {
			// Accounts need password hashing, so creation lives on
			// the admin users endpoint.
			apierrors.BadRequest(c, "Create users via /api/admin/users")
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
		created, err := res.Create(c.Request.Context(), body)
		if err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				apierrors.BadRequest(c, "Invalid request body")
				return
			}
			if _, ok := err.(*json.UnmarshalTypeError); ok {
				apierrors.BadRequest(c, "Invalid request body")
				return
			}
			apierrors.InternalError(c, "Failed to create "+name)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": created})
	}
}

func (h *ResourcesHandler) update(res resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch map[string]any
		if err := c.ShouldBindJSON(&patch); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
		row, found, err := res.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			apierrors.InternalError(c, "")
			return
		}
		if !found {
			apierrors.NotFound(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": row})
	}
}

func (h *ResourcesHandler) remove(res resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := res.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			apierrors.InternalError(c, "")
			return
		}
		if !ok {
			apierrors.NotFound(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
