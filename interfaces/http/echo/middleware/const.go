package middleware

const (
	SessionCookie     = "portal_session"
	RequestSessionKey = "requestSession"
	APIClientKey      = "apiClient"
	VisitorIDKey      = "visitorID"
)
