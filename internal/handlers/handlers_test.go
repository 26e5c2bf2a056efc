package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/services"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

type apiTestEnv struct {
	router *gin.Engine

	usersRepo       *repository.UsersRepository
	locationsRepo   *repository.LocationsRepository
	shiftsRepo      *repository.ShiftsRepository
	assignmentsRepo *repository.AssignmentsRepository

	usersService       *services.UsersService
	shiftsService      *services.ShiftsService
	assignmentsService *services.AssignmentsService
	eventsService      *services.EventsService
}

// setupAPITestEnv wires the full route table over a file-backed store in
// a temp directory, mirroring the production wiring.
func setupAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := storage.NewFileStores(t.TempDir(), zap.NewNop())
	usersRepo := repository.NewUsersRepository(stores.Users)
	locationsRepo := repository.NewLocationsRepository(stores.Locations)
	eventsRepo := repository.NewEventsRepository(stores.Events)
	shiftsRepo := repository.NewShiftsRepository(stores.Shifts)
	assignmentsRepo := repository.NewAssignmentsRepository(stores.Assignments)

	authService := services.NewAuthService(usersRepo)
	usersService := services.NewUsersService(usersRepo)
	assignmentsService := services.NewAssignmentsService(assignmentsRepo)
	shiftsService := services.NewShiftsService(shiftsRepo, assignmentsService)
	eventsService := services.NewEventsService(eventsRepo, shiftsRepo, shiftsService)
	scheduleService := services.NewScheduleService(shiftsRepo, assignmentsRepo, usersRepo, locationsRepo, eventsRepo)

	authHandler := NewAuthHandler(authService)
	usersHandler := NewUsersHandler(usersService)
	resourcesHandler := NewResourcesHandler(usersRepo, locationsRepo, eventsService, shiftsRepo, shiftsService, assignmentsRepo)
	shiftsHandler := NewShiftsHandler(shiftsService, assignmentsService, usersRepo)
	scheduleHandler := NewScheduleHandler(scheduleService)
	exportHandler := NewExportHandler(shiftsRepo, assignmentsRepo, usersRepo, locationsRepo)
	adminHandler := NewAdminHandler(usersService, shiftsService)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))

	requireAuth := middleware.RequireAuth(authService)
	managerUp := middleware.RequireRoles(models.RoleManager, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		me := api.Group("/me")
		me.Use(requireAuth)
		{
			me.PUT("/preferences", usersHandler.UpdatePreferences)
			me.PUT("/availability", usersHandler.UpdateAvailability)
		}

		resources := api.Group("")
		resources.Use(requireAuth)
		resourcesHandler.Register(resources)

		shifts := api.Group("/shifts")
		shifts.Use(requireAuth)
		{
			shifts.POST("/:id/signup", middleware.RequireRoles(models.RoleWorker), shiftsHandler.Signup)
			shifts.POST("/:id/unassign", middleware.RequireRoles(models.RoleWorker, models.RoleAdmin), shiftsHandler.Unassign)
			shifts.POST("/:id/assign", managerUp, shiftsHandler.Assign)
			shifts.GET("/:id/occupancy", shiftsHandler.Occupancy)
			shifts.PATCH("/:id/approval", managerUp, shiftsHandler.SetApproval)
		}

		assignments := api.Group("/assignments")
		assignments.Use(requireAuth)
		{
			assignments.PATCH("/:id/status", managerUp, shiftsHandler.SetAssignmentStatus)
		}

		schedule := api.Group("/schedule")
		schedule.Use(requireAuth)
		{
			schedule.GET("/day/:date", scheduleHandler.Day)
			schedule.GET("/summary", scheduleHandler.Summary)
			schedule.GET("/my", scheduleHandler.My)
			schedule.GET("/dashboard", scheduleHandler.Dashboard)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth)
		{
			admin.POST("/users", adminOnly, adminHandler.CreateUser)
			admin.PATCH("/users/:id/role", adminOnly, adminHandler.SetUserRole)
			admin.PATCH("/users/:id/active", adminOnly, adminHandler.SetUserActive)
			admin.POST("/shifts/bulk", managerUp, adminHandler.BulkCreateShifts)
			admin.GET("/export/shifts", managerUp, exportHandler.Shifts)
		}
	}

	return &apiTestEnv{
		router:             r,
		usersRepo:          usersRepo,
		locationsRepo:      locationsRepo,
		shiftsRepo:         shiftsRepo,
		assignmentsRepo:    assignmentsRepo,
		usersService:       usersService,
		shiftsService:      shiftsService,
		assignmentsService: assignmentsService,
		eventsService:      eventsService,
	}
}

func (env *apiTestEnv) createUser(t *testing.T, name, email string, role models.AppRole) *models.UserRecord {
	t.Helper()
	user, err := env.usersService.Create(context.Background(), services.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: "supersecret",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// login authenticates and returns the session cookies for follow-up
// requests.
func (env *apiTestEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (env *apiTestEnv) do(t *testing.T, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
