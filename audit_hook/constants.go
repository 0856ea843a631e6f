package audithook

// Action constants for audit events.
const (
	// Summoner actions
	ActionSummonerSummoned    = "summoner.summoned"
	ActionSummonerTransferred = "summoner.transferred"
	ActionSummonerApproved    = "summoner.approved"

	// Operator actions
	ActionOperatorGranted = "operator.granted"
	ActionOperatorRevoked = "operator.revoked"

	// Admin actions
	ActionBaseURIUpdated   = "settings.base_uri_updated"
	ActionAdminTransferred = "admin.transferred"

	// Access actions
	ActionAccessDenied = "access.denied"
)

// Resource constants for audit events.
const (
	ResourceSummoner = "summoner"
	ResourceOperator = "operator"
	ResourceSettings = "settings"
)

// Category constants for audit events.
const (
	CategoryAsset  = "asset"
	CategoryAccess = "access"
	CategoryAdmin  = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
