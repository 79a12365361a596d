package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/pura-ai/call-tracker/internal/model"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
)

type AgentService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	Logout(ctx context.Context, id string) error
}

type AgentHandler struct {
	svc AgentService
}

func NewAgentHandler(svc AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

func RegisterAgentRoutes(g *router.Group, auth *Authenticator, h *AgentHandler) {
	g.POST("/agents/login", h.Login)
	g.GET("/agents/session", auth.Session(h.GetSession))
	g.POST("/agents/logout", auth.Session(h.Logout))
}

type loginResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	AgentName string `json:"agentName"`
	IsAdmin   bool   `json:"isAdmin"`
	Message   string `json:"message"`
}

type sessionResponse struct {
	Success bool           `json:"success"`
	Session *model.Session `json:"session"`
}

func (h *AgentHandler) Login(ctx *xhttp.RequestCtx) {
	var req model.LoginRequest
	if err := xhttp.ReadJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}

	s, err := h.svc.Login(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, loginResponse{
		Success:   true,
		SessionID: s.ID,
		AgentName: s.AgentName,
		IsAdmin:   s.IsAdmin,
		Message:   "Welcome, " + s.AgentName + "!",
	})
}

func (h *AgentHandler) GetSession(ctx *xhttp.RequestCtx) {
	s, err := h.svc.GetSession(ctx, string(ctx.Request.Header.Peek(HeaderSessionID)))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, sessionResponse{Success: true, Session: s})
}

func (h *AgentHandler) Logout(ctx *xhttp.RequestCtx) {
	if err := h.svc.Logout(ctx, string(ctx.Request.Header.Peek(HeaderSessionID))); err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}
