package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType      = "Content-Type"
	HeaderXRequestID       = "X-Request-ID"
	HeaderXActorID         = "X-Actor-ID"
	HeaderXActorRole       = "X-Actor-Role"
	HeaderWebhookSignature = "X-Girder-Signature"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyActorID   = "actor_id"
	ContextKeyActorRole = "actor_role"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableSubscriptions       = "subscriptions"
	TableSubscriptionHistory = "subscription_history"
	TableNotifications       = "notifications"
	TableSandboxRuns         = "sandbox_runs"
	TableApps                = "apps"
	TableWorkflows           = "workflows"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgForbidden           = "Access forbidden"
	ErrMsgValidationFailed    = "Validation failed"
)
