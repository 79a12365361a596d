package services

import (
	"context"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	components map[string]Pinger
}

func NewHealthService(components map[string]Pinger) *HealthService {
	return &HealthService{components: components}
}

// Check pings every dependency; Status is "ok" only when all of them answer.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	h := &HealthStatus{Status: "ok", Components: make(map[string]string, len(s.components))}
	for name, p := range s.components {
		if err := p.Ping(ctx); err != nil {
			h.Components[name] = err.Error()
			h.Status = "degraded"
			continue
		}
		h.Components[name] = "ok"
	}
	return h
}
