package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockCallService struct {
	mock.Mock
}

func (m *MockCallService) calls(args mock.Arguments) ([]*model.Call, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Call), args.Error(1)
}

func (m *MockCallService) List(ctx context.Context) ([]*model.Call, error) {
	return m.calls(m.Called(ctx))
}

func (m *MockCallService) ListActive(ctx context.Context) ([]*model.Call, error) {
	return m.calls(m.Called(ctx))
}

func (m *MockCallService) Refresh(ctx context.Context) ([]*model.Call, error) {
	return m.calls(m.Called(ctx))
}

func (m *MockCallService) Create(ctx context.Context, req model.CallCreateRequest) (*model.CreateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateResult), args.Error(1)
}

func (m *MockCallService) Update(ctx context.Context, id int64, req model.CallUpdateRequest) (*model.Call, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Call), args.Error(1)
}

func (m *MockCallService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockCallService) ArchiveDay(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCallService) Export(ctx context.Context) (*model.ExportResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExportResult), args.Error(1)
}

func (m *MockCallService) ExportXLSX(ctx context.Context) ([]byte, string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockCallService) Stats(ctx context.Context) (*model.CallStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallStats), args.Error(1)
}

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) Login(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAgentService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAgentService) Logout(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockActivityReader struct {
	mock.Mock
}

func (m *MockActivityReader) Get(ctx context.Context, date string) (map[string]int64, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type stubHealth struct {
	status *services.HealthStatus
}

func (s stubHealth) Check(ctx context.Context) *services.HealthStatus {
	return s.status
}

type testAPI struct {
	calls    *MockCallService
	agents   *MockAgentService
	activity *MockActivityReader
	router   *xhttp.Router
}

// newTestAPI mounts every route the way cmd/api does. Sessions "agent" and
// "admin" resolve to Mona and Chandan.
func newTestAPI(t *testing.T) *testAPI {
	api := &testAPI{
		calls:    new(MockCallService),
		agents:   new(MockAgentService),
		activity: new(MockActivityReader),
		router:   xhttp.CreateDefaultRouter(),
	}
	api.agents.On("GetSession", mock.Anything, "agent").
		Return(&model.Session{ID: "agent", AgentName: "Mona"}, nil).Maybe()
	api.agents.On("GetSession", mock.Anything, "admin").
		Return(&model.Session{ID: "admin", AgentName: "Chandan", IsAdmin: true}, nil).Maybe()
	api.agents.On("GetSession", mock.Anything, "").
		Return(nil, &services.Error{Kind: services.KindUnauthorized, Message: "session id is required"}).Maybe()
	api.agents.On("GetSession", mock.Anything, "gone").
		Return(nil, &services.Error{Kind: services.KindNotFound, Message: "session not found"}).Maybe()

	auth := NewAuthenticator(api.agents)
	g := api.router.Group("/api/v1")
	RegisterCallRoutes(g, auth, NewCallHandler(api.calls))
	RegisterAgentRoutes(g, auth, NewAgentHandler(api.agents))
	RegisterStatsRoutes(g, auth, NewStatsHandler(api.calls, api.activity))

	t.Cleanup(func() {
		api.calls.AssertExpectations(t)
		api.activity.AssertExpectations(t)
	})
	return api
}

func (a *testAPI) do(method, path, session string, body any) *fasthttp.RequestCtx {
	return serve(a.router, method, path, session, body)
}

func serve(r *xhttp.Router, method, path, session string, body any) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if session != "" {
		ctx.Request.Header.Set(HeaderSessionID, session)
	}
	switch b := body.(type) {
	case nil:
	case string:
		ctx.Request.SetBodyString(b)
	default:
		raw, _ := json.Marshal(b)
		ctx.Request.SetBody(raw)
	}
	r.Handler(ctx)
	return ctx
}

func decode[T any](t *testing.T, ctx *fasthttp.RequestCtx) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v), string(ctx.Response.Body()))
	return v
}

type errorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

func ptr[T any](v T) *T {
	return &v
}
