package dto

import (
	"github.com/pskladal/staff-shifts-api/internal/models"
)

// UserDTO is a user in API responses. The password hash never leaves the
// service.
type UserDTO struct {
	ID                 string                               `json:"id"`
	Name               string                               `json:"name"`
	Email              string                               `json:"email"`
	Role               models.AppRole                       `json:"role"`
	Active             bool                                 `json:"active"`
	LocationIDs        []string                             `json:"locationIds"`
	PreferredRoles     []models.StaffRole                   `json:"preferredRoles"`
	AvailabilityByDate map[string]models.AvailabilityStatus `json:"availabilityByDate"`
	CreatedAt          string                               `json:"createdAt"`
	UpdatedAt          string                               `json:"updatedAt"`
}

// ToUserDTO converts a user record into its response form.
func ToUserDTO(user *models.UserRecord) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Active:             user.Active,
		LocationIDs:        user.LocationIDs,
		PreferredRoles:     user.PreferredRoles,
		AvailabilityByDate: user.AvailabilityByDate,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}
