package audit

const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
)

// Actor is whoever triggered a change, as seen by the HTTP layer.
type Actor struct {
	ID        string
	Role      string
	RequestID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsStaff is true for anyone working at the clinic, admins included.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleStaff
}

// Event builds an audit event attributed to the actor.
func (a Actor) Event(action, entity string, entityID *uint, metadata any) Event {
	return Event{
		ActorID:   a.ID,
		RequestID: a.RequestID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Metadata:  metadata,
	}
}
