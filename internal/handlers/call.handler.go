package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/pura-ai/call-tracker/internal/model"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CallService interface {
	List(ctx context.Context) ([]*model.Call, error)
	ListActive(ctx context.Context) ([]*model.Call, error)
	Refresh(ctx context.Context) ([]*model.Call, error)
	Create(ctx context.Context, req model.CallCreateRequest) (*model.CreateResult, error)
	Update(ctx context.Context, id int64, req model.CallUpdateRequest) (*model.Call, error)
	Delete(ctx context.Context, actor model.Identity, id int64) error
	ArchiveDay(ctx context.Context) (int64, error)
	Export(ctx context.Context) (*model.ExportResult, error)
	ExportXLSX(ctx context.Context) ([]byte, string, error)
}

type CallHandler struct {
	svc CallService
}

func NewCallHandler(svc CallService) *CallHandler {
	return &CallHandler{svc: svc}
}

func RegisterCallRoutes(g *router.Group, auth *Authenticator, h *CallHandler) {
	g.GET("/calls", auth.Session(h.ListCalls))
	g.POST("/calls", auth.Session(h.CreateCall))
	g.GET("/calls/refresh", auth.Session(h.RefreshCalls))
	g.PATCH("/calls/{id}", auth.Session(h.UpdateCall))
	g.DELETE("/calls/{id}", auth.Admin(h.DeleteCall))
	g.GET("/calls/export", auth.Admin(h.ExportCalls))
	g.GET("/calls/export.xlsx", auth.Admin(h.ExportCallsXLSX))
	g.POST("/calls/archive-day", auth.Admin(h.ArchiveDay))
}

type createCallResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	IsUpdate bool        `json:"isUpdate"`
	Call     *model.Call `json:"call"`
}

type exportResponse struct {
	Success  bool   `json:"success"`
	CSV      string `json:"csv"`
	FileName string `json:"fileName"`
}

type archiveResponse struct {
	Success  bool  `json:"success"`
	Archived int64 `json:"archived"`
}

func (h *CallHandler) ListCalls(ctx *xhttp.RequestCtx) {
	list := h.svc.List
	if query(ctx, "active") == "true" {
		list = h.svc.ListActive
	}
	calls, err := list(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, calls)
}

func (h *CallHandler) RefreshCalls(ctx *xhttp.RequestCtx) {
	calls, err := h.svc.Refresh(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, calls)
}

func (h *CallHandler) CreateCall(ctx *xhttp.RequestCtx) {
	var req model.CallCreateRequest
	if err := xhttp.ReadJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.AgentName) == "" {
		req.AgentName = IdentityFrom(ctx).AgentName
	}

	res, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	status, msg := xhttp.StatusCreated, "Call created successfully"
	if res.IsUpdate {
		status, msg = xhttp.StatusOK, "Call updated successfully"
	}
	xhttp.WriteJSON(ctx, status, createCallResponse{
		Success:  true,
		Message:  msg,
		IsUpdate: res.IsUpdate,
		Call:     res.Call,
	})
}

func (h *CallHandler) UpdateCall(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		writeBadRequest(ctx, "id must be a positive integer")
		return
	}
	var req model.CallUpdateRequest
	if err := xhttp.ReadJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}

	if _, err := h.svc.Update(ctx, id, req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, messageResponse{Success: true, Message: "Call updated successfully"})
}

func (h *CallHandler) DeleteCall(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		writeBadRequest(ctx, "id must be a positive integer")
		return
	}
	if err := h.svc.Delete(ctx, IdentityFrom(ctx), id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, messageResponse{Success: true, Message: "Call deleted successfully"})
}

func (h *CallHandler) ExportCalls(ctx *xhttp.RequestCtx) {
	res, err := h.svc.Export(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, exportResponse{Success: true, CSV: res.Content, FileName: res.FileName})
}

func (h *CallHandler) ExportCallsXLSX(ctx *xhttp.RequestCtx) {
	body, fileName, err := h.svc.ExportXLSX(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteAttachment(ctx, xlsxContentType, fileName, body)
}

func (h *CallHandler) ArchiveDay(ctx *xhttp.RequestCtx) {
	n, err := h.svc.ArchiveDay(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, archiveResponse{Success: true, Archived: n})
}
