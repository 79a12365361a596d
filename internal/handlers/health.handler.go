package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
)

type HealthService interface {
	Check(ctx context.Context) *services.HealthStatus
}

type HealthHandler struct {
	svc HealthService
}

func RegisterHealthRoutes(g *router.Group, h *HealthHandler) {
	g.GET("/health", h.GetHealth)
}

func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	status := h.svc.Check(ctx)
	code := xhttp.StatusOK
	if status.Status != "ok" {
		code = xhttp.StatusServiceUnavailable
	}
	xhttp.WriteJSON(ctx, code, status)
}
