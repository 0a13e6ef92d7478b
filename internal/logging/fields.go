package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. project_created).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldProjectID is the registry identifier of the project being acted on.
	FieldProjectID = "project_id"
	// FieldProjectName is the sanitized project name.
	FieldProjectName = "project_name"
	// FieldPath is a filesystem path involved in the operation.
	FieldPath = "path"
	// FieldOperation names the lifecycle operation (create, rename, ...).
	FieldOperation = "operation"
)
