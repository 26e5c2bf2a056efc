package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

type servicesTestEnv struct {
	usersRepo       *repository.UsersRepository
	locationsRepo   *repository.LocationsRepository
	eventsRepo      *repository.EventsRepository
	shiftsRepo      *repository.ShiftsRepository
	assignmentsRepo *repository.AssignmentsRepository

	auth        *AuthService
	users       *UsersService
	assignments *AssignmentsService
	shifts      *ShiftsService
	events      *EventsService
	schedule    *ScheduleService
}

func setupServicesTestEnv(t *testing.T) *servicesTestEnv {
	t.Helper()

	stores := storage.NewFileStores(t.TempDir(), zap.NewNop())
	env := &servicesTestEnv{
		usersRepo:       repository.NewUsersRepository(stores.Users),
		locationsRepo:   repository.NewLocationsRepository(stores.Locations),
		eventsRepo:      repository.NewEventsRepository(stores.Events),
		shiftsRepo:      repository.NewShiftsRepository(stores.Shifts),
		assignmentsRepo: repository.NewAssignmentsRepository(stores.Assignments),
	}
	env.auth = NewAuthService(env.usersRepo)
	env.users = NewUsersService(env.usersRepo)
	env.assignments = NewAssignmentsService(env.assignmentsRepo)
	env.shifts = NewShiftsService(env.shiftsRepo, env.assignments)
	env.events = NewEventsService(env.eventsRepo, env.shiftsRepo, env.shifts)
	env.schedule = NewScheduleService(env.shiftsRepo, env.assignmentsRepo, env.usersRepo, env.locationsRepo, env.eventsRepo)
	return env
}

func (env *servicesTestEnv) createWorker(t *testing.T, name, email string) *models.UserRecord {
	t.Helper()
	user, err := env.users.Create(context.Background(), CreateUserInput{
		Name:     name,
		Email:    email,
		Password: "supersecret",
		Role:     models.RoleWorker,
	})
	require.NoError(t, err)
	return user
}

func (env *servicesTestEnv) createShift(t *testing.T, shift *models.ShiftRecord) *models.ShiftRecord {
	t.Helper()
	created, err := env.shiftsRepo.Create(context.Background(), shift)
	require.NoError(t, err)
	return created
}
