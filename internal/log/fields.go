package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldVideoID   = "video_id"
	FieldHandleID  = "handle_id"
	FieldPage      = "page"
	FieldQuery     = "query"
	FieldIndex     = "index"
	FieldSet       = "set"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldBaseURL   = "base_url"
)
