package models

// AppRole is an application-level role deciding what a user may do.
type AppRole string

const (
	RoleWorker  AppRole = "worker"
	RoleManager AppRole = "manager"
	RoleAdmin   AppRole = "admin"
)

// ShiftType classifies a staffing slot.
type ShiftType string

const (
	ShiftRestaurant ShiftType = "restaurant"
	ShiftWedding    ShiftType = "wedding"
	ShiftEvent      ShiftType = "event"
)

// EventType classifies a booking that generates a shift.
type EventType string

const (
	EventWedding EventType = "wedding"
	EventGeneric EventType = "event"
)

// StaffRole is the position a worker fills on a shift.
type StaffRole string

const (
	StaffService StaffRole = "service"
	StaffBar     StaffRole = "bar"
	StaffKitchen StaffRole = "kitchen"
	StaffRunner  StaffRole = "runner"
)

// AssignmentStatus tracks manager approval of a signup.
type AssignmentStatus string

const (
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentPending   AssignmentStatus = "pending"
)

// AvailabilityStatus is a worker's declared availability for one date.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityPreferred   AvailabilityStatus = "preferred"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// AppRoles lists every valid application role.
var AppRoles = []AppRole{RoleWorker, RoleManager, RoleAdmin}

// StaffRoles lists every valid staff role.
var StaffRoles = []StaffRole{StaffService, StaffBar, StaffKitchen, StaffRunner}

// ShiftTypes lists every valid shift type.
var ShiftTypes = []ShiftType{ShiftRestaurant, ShiftWedding, ShiftEvent}

// EventTypes lists every valid event type.
var EventTypes = []EventType{EventWedding, EventGeneric}

// AvailabilityStatuses lists every valid availability status.
var AvailabilityStatuses = []AvailabilityStatus{
	AvailabilityAvailable, AvailabilityPreferred, AvailabilityUnavailable,
}

// ValidAppRole reports whether r is a known application role.
func ValidAppRole(r AppRole) bool {
	for _, candidate := range AppRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ValidStaffRole reports whether r is a known staff role.
func ValidStaffRole(r StaffRole) bool {
	for _, candidate := range StaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ValidShiftType reports whether t is a known shift type.
func ValidShiftType(t ShiftType) bool {
	for _, candidate := range ShiftTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ValidEventType reports whether t is a known event type.
func ValidEventType(t EventType) bool {
	for _, candidate := range EventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ValidAvailabilityStatus reports whether s is a known availability status.
func ValidAvailabilityStatus(s AvailabilityStatus) bool {
	for _, candidate := range AvailabilityStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Meta carries the identity every stored record shares. The id and
// createdAt fields are immutable after creation; updatedAt is refreshed on
// every write.
type Meta struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// RecordID returns the record's id.
func (m *Meta) RecordID() string { return m.ID }

// StampNew assigns identity to a freshly created record.
func (m *Meta) StampNew(id, timestamp string) {
	m.ID = id
	m.CreatedAt = timestamp
	m.UpdatedAt = timestamp
}

// RoleRequirement expresses how many people of one staff role a shift or
// event calls for.
type RoleRequirement struct {
	Role  StaffRole `json:"role"`
	Count int       `json:"count"`
}

// UserRecord is a worker, manager, or admin account.
type UserRecord struct {
	Meta
	Name               string                        `json:"name"`
	Email              string                        `json:"email"`
	PasswordHash       string                        `json:"passwordHash"`
	Role               AppRole                       `json:"role"`
	Active             bool                          `json:"active"`
	LocationIDs        []string                      `json:"locationIds"`
	PreferredRoles     []StaffRole                   `json:"preferredRoles"`
	AvailabilityByDate map[string]AvailabilityStatus `json:"availabilityByDate"`
}

// PreferredRole returns the user's first preferred staff role, defaulting
// to service.
func (u *UserRecord) PreferredRole() StaffRole {
	if len(u.PreferredRoles) > 0 {
		return u.PreferredRoles[0]
	}
	return StaffService
}

// LocationRecord is a venue shifts take place at.
type LocationRecord struct {
	Meta
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

// EventRecord is a wedding or one-off event booking. Each event owns at
// most one generated shift, referenced by ShiftID.
type EventRecord struct {
	Meta
	Name          string            `json:"name"`
	Type          EventType         `json:"type"`
	Date          string            `json:"date"`
	StartTime     string            `json:"startTime"`
	EndTime       string            `json:"endTime"`
	LocationID    string            `json:"locationId"`
	RequiredRoles []RoleRequirement `json:"requiredRoles"`
	MinimumPeople int               `json:"minimumPeople"`
	Notes         string            `json:"notes,omitempty"`
	ShiftID       string            `json:"shiftId,omitempty"`
}

// ShiftRecord is a concrete staffing slot. EventID is set when the shift
// was generated from (and mirrors) an event.
type ShiftRecord struct {
	Meta
	Date             string            `json:"date"`
	StartTime        string            `json:"startTime"`
	EndTime          string            `json:"endTime"`
	LocationID       string            `json:"locationId"`
	Type             ShiftType         `json:"type"`
	RequiredRoles    []RoleRequirement `json:"requiredRoles"`
	MinimumPeople    int               `json:"minimumPeople"`
	RequiresApproval bool              `json:"requiresApproval"`
	Notes            string            `json:"notes,omitempty"`
	EventID          string            `json:"eventId,omitempty"`
}

// AssignmentRecord is a worker's claim on a shift.
type AssignmentRecord struct {
	Meta
	ShiftID   string           `json:"shiftId"`
	UserID    string           `json:"userId"`
	StaffRole StaffRole        `json:"staffRole"`
	Status    AssignmentStatus `json:"status"`
	Notes     string           `json:"notes,omitempty"`
}
