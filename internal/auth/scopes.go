package auth

// Known OAuth scopes used by the report service.
const (
	ScopeReportsWrite = "reports:write"
	ScopeReportsRead  = "reports:read"
	ScopeReportsAdmin = "reports:admin"
)
