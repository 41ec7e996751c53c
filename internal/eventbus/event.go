package eventbus

import "time"

// Delivery outcome event types.
const (
	TypeDeliverySent   = "notification.delivery.sent"
	TypeDeliveryFailed = "notification.delivery.failed"
)

// Payload keys of delivery outcome events.
const (
	KeyRequestID    = "request_id"
	KeySource       = "source"
	KeyType         = "notification_type"
	KeyCategory     = "category"
	KeyRecipient    = "recipient"
	KeySubject      = "subject"
	KeyTemplateName = "template_name"
	KeyErrorKind    = "error_kind"
	KeyError        = "error"
)

// Event represents an application event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)
