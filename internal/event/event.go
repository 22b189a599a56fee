package event

type Type string

const (
	TypeSessionLogin        Type = "session.login"
	TypeSessionLogout       Type = "session.logout"
	TypeSessionExpired      Type = "session.expired"
	TypeSessionUnauthorized Type = "session.unauthorized"
)

// Event describes a session lifecycle transition. Email and Role are the
// JWT-derived values at the moment of the transition, carried for logging
// only; nothing downstream may treat them as authorization state.
type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
