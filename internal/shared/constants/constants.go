package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderWebhookSig    = "X-Webhook-Signature"

	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"

	// Roles
	RoleAdmin    = "admin"
	RoleUploader = "uploader"

	// Database table names
	TableAccessGrants = "access_grants"
	TableAssets       = "assets"

	// Asset defaults
	MaxUploadSizeBytes  = 500 * 1024 * 1024
	MaxAssetTitleLength = 200
	MaxDescriptionLen   = 1000
	MaxAssetTags        = 10
	MaxAssetPrice       = 1000

	// ManifestExpirySeconds is how long an access descriptor stays valid.
	ManifestExpirySeconds = 300
)
