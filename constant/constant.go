package constant

const (
	EmptyString = ""

	// DefaultCacheTTLHours is applied to fetched test data when the caller
	// does not override the TTL.
	DefaultCacheTTLHours = 1

	// DefaultLaunchLimit bounds the per-query test-item fan-out to the most
	// recent launches.
	DefaultLaunchLimit = 10

	// DefaultLaunchPageSize / DefaultItemPageSize match the ReportPortal API
	// paging defaults the service was tuned against.
	DefaultLaunchPageSize = 50
	DefaultItemPageSize   = 200

	// DefaultContextMaxRows bounds the tabular context handed to the model.
	DefaultContextMaxRows = 50

	// DefaultSessionHistoryLimit caps stored query/response pairs per session.
	DefaultSessionHistoryLimit = 50

	// DefaultSessionRetentionDays is how long an idle session survives cleanup.
	DefaultSessionRetentionDays = 7
)
