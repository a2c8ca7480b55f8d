package audit

// Actor identifies who performed an audited action, plus the request context
// it arrived with. Handlers build it once per request and pass it down.
type Actor struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
	Client    ClientContext
}

// SystemActor is the reserved identity for system-initiated entries.
func SystemActor() Actor {
	return Actor{UserID: SystemUserID, Role: "system"}
}

// NewRecord builds a Record pre-filled with the actor fields. Callers set the
// optional fields before handing it to Manager.Log.
func (a Actor) NewRecord(action Action, resource string) Record {
	return Record{
		Action:    action,
		Resource:  resource,
		UserID:    a.UserID,
		UserEmail: a.Email,
		UserRole:  a.Role,
		SessionID: a.SessionID,
		Client:    a.Client,
	}
}
