package domain

// EventType names a navigation request raised by the core.
type EventType string

const (
	EventProductSelected EventType = "product_selected"
	EventNavigateBack    EventType = "navigate_back"
)

// Event asks the surrounding navigation layer to move somewhere. Routing is
// its job, not the core's.
type Event struct {
	Type EventType `json:"type"`
	Code string    `json:"code,omitempty"`
}
