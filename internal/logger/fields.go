package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldSessionID is the import session ID
	FieldSessionID = "session_id"

	// FieldSchema is the import schema ID
	FieldSchema = "schema"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldActor is the identity driving an import
	FieldActor = "actor"
)

// Standard metric fields attached at the log site.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
