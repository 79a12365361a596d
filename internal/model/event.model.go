package model

import "time"

type CallEventType string

const (
	CallEventCreated     CallEventType = "call_created"
	CallEventReattempted CallEventType = "call_reattempted"
	CallEventUpdated     CallEventType = "call_updated"
	CallEventDeleted     CallEventType = "call_deleted"
	CallEventDayArchived CallEventType = "day_archived"
)

// CallEvent is published on the event stream after a successful write.
type CallEvent struct {
	ID         string        `json:"id"`
	Type       CallEventType `json:"type"`
	CallID     int64         `json:"callId,omitempty"`
	AgentName  string        `json:"agentName,omitempty"`
	Status     CallStatus    `json:"status,omitempty"`
	Count      int64         `json:"count,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
