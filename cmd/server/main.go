package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/config"
	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/handlers"
	"github.com/pskladal/staff-shifts-api/internal/middleware"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/services"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Pick the storage backend once. DATABASE_URL present means
	// Postgres; otherwise records live in JSON files under DATA_DIR.
	var stores *storage.Stores
	if cfg.DatabaseURL != "" {
		db, err := storage.OpenPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		stores = storage.NewPostgresStores(db, cfg.DataDir)
		logger.Info("storage backend: postgres")
	} else {
		stores = storage.NewFileStores(cfg.DataDir, logger)
		logger.Info("storage backend: files", zap.String("dataDir", cfg.DataDir))
	}

	// Repositories
	usersRepo := repository.NewUsersRepository(stores.Users)
	locationsRepo := repository.NewLocationsRepository(stores.Locations)
	eventsRepo := repository.NewEventsRepository(stores.Events)
	shiftsRepo := repository.NewShiftsRepository(stores.Shifts)
	assignmentsRepo := repository.NewAssignmentsRepository(stores.Assignments)

	// Services
	authService := services.NewAuthService(usersRepo)
	usersService := services.NewUsersService(usersRepo)
	assignmentsService := services.NewAssignmentsService(assignmentsRepo)
	shiftsService := services.NewShiftsService(shiftsRepo, assignmentsService)
	eventsService := services.NewEventsService(eventsRepo, shiftsRepo, shiftsService)
	scheduleService := services.NewScheduleService(shiftsRepo, assignmentsRepo, usersRepo, locationsRepo, eventsRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	usersHandler := handlers.NewUsersHandler(usersService)
	resourcesHandler := handlers.NewResourcesHandler(usersRepo, locationsRepo, eventsService, shiftsRepo, shiftsService, assignmentsRepo)
	shiftsHandler := handlers.NewShiftsHandler(shiftsService, assignmentsService, usersRepo)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	exportHandler := handlers.NewExportHandler(shiftsRepo, assignmentsRepo, usersRepo, locationsRepo)
	adminHandler := handlers.NewAdminHandler(usersService, shiftsService)

	r := gin.Default()

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

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

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newSessionStore picks Redis-backed sessions when REDIS_HOST is set and
// falls back to signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	isProduction := cfg.GinMode == "release"
	options := sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // Lax
	}

	if cfg.RedisHost != "" {
		store, err := redisStore.NewStore(10, "tcp", cfg.RedisHost+":"+cfg.RedisPort, "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, err
		}
		store.Options(options)
		return store, nil
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(options)
	return store, nil
}
