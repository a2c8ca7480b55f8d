package events

import "context"

// Streams
const (
	StreamSecurity = "events:security"
	StreamTender   = "events:tender"
)

// Event types
const (
	EventSecurityAlert        = "security_alert"
	EventTenderStatusChanged  = "tender_status_changed"
	EventCompanyStatusChanged = "company_status_changed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
