package enums

type SessionEvent string

const (
	SessionEventLogin    SessionEvent = "session.login"
	SessionEventRegister SessionEvent = "session.register"
	SessionEventLogout   SessionEvent = "session.logout"
	SessionEventExpired  SessionEvent = "session.expired"
)
