package model

import "time"

type Session struct {
	ID           string    `json:"sessionId"`
	AgentName    string    `json:"agentName"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

func (s *Session) Identity() Identity {
	return Identity{AgentName: s.AgentName, IsAdmin: s.IsAdmin}
}

// Identity is the authenticated caller of a service operation.
type Identity struct {
	AgentName string
	IsAdmin   bool
}

type LoginRequest struct {
	AgentName string `json:"agentName" validate:"notblank"`
	IsAdmin   bool   `json:"isAdmin"`
}
