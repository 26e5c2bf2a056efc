package constants

// Session
const (
	SessionCookieName = "staff_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
	SessionMaxAge     = 60 * 60 * 24 * 14 // 14 days
)

// MinPasswordLength is the minimum accepted password length for new users.
const MinPasswordLength = 8

// FlexibleEndTime is the sentinel end time meaning "depends on how the
// event unfolds". It is intentionally not a clock time, so it sorts after
// every HH:MM value.
const FlexibleEndTime = "dle situace"

// Resource names recognized by the generic resource API and the storage
// layer. Each one maps to a JSON file (file backend) or an app_records
// partition (relational backend).
const (
	ResourceUsers       = "users"
	ResourceLocations   = "locations"
	ResourceEvents      = "events"
	ResourceShifts      = "shifts"
	ResourceAssignments = "assignments"
)
