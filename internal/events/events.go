package events

import (
	"encoding/json"
	"time"
)

const (
	EventCartUpdated   = "CartUpdated"
	EventUserSignedUp  = "UserSignedUp"
	EventUserLoggedIn  = "UserLoggedIn"
	EventUserLoggedOut = "UserLoggedOut"
)

// Envelope wraps every storefront event, version 1.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type CartUpdatedPayload struct {
	Action    string  `json:"action"` // added | removed | quantity | cleared
	ProductID int     `json:"product_id,omitempty"`
	Items     int     `json:"items"`
	Total     float64 `json:"total"`
}

type UserActivityPayload struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username"`
}
