package constants

// Session and context keys
const (
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
	ContextKeyProject = "project"
	ContextKeyLogger  = "logger"
	HeaderRequestID   = "X-Request-ID"
)

// Session lifetime in seconds (7 days)
const SessionMaxAge = 86400 * 7

// MaxTaskTitleLength bounds task titles, including AI drafts.
const MaxTaskTitleLength = 150

// DefaultProjectColor is assigned to projects created without a color.
const DefaultProjectColor = "#6366f1"

// MaxAIGeneratedTasks caps the number of drafts accepted from the model.
const MaxAIGeneratedTasks = 20

// RecentActivityDays is the width of the dashboard activity window.
const RecentActivityDays = 7
