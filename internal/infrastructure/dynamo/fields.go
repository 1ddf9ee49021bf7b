package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotified    = "notified"
	fieldUninstalled = "uninstalled"
	fieldAccessToken = "access_token"
	fieldUpdatedAt   = "updated_at"
)
