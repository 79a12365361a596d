package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admins = []string{"Chandan", "Esmail"}

func TestAgentService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("admin flag for a name off the allow-list is rejected", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		service := NewAgentService(sessions, admins, time.Hour)

		session, err := service.Login(ctx, model.LoginRequest{AgentName: "Agent1", IsAdmin: true})
		assert.Nil(t, session)
		assert.ErrorIs(t, err, ErrInvalidAdminCredentials)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "invalid admin credentials", err.Error())
		sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)

		sessions.On("Save", ctx, mock.Anything, time.Hour).Return(nil)
		session, err = service.Login(ctx, model.LoginRequest{AgentName: "Agent1"})
		require.NoError(t, err)
		assert.Equal(t, "Agent1", session.AgentName)
		assert.False(t, session.IsAdmin)
	})

	t.Run("allow-listed admin", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		service := NewAgentService(sessions, admins, time.Hour)
		sessions.On("Save", ctx, mock.MatchedBy(func(s *model.Session) bool {
			return s.AgentName == "Chandan" && s.IsAdmin
		}), time.Hour).Return(nil)

		session, err := service.Login(ctx, model.LoginRequest{AgentName: "Chandan", IsAdmin: true})
		require.NoError(t, err)
		assert.True(t, session.IsAdmin)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), session.ID)
		sessions.AssertExpectations(t)
	})

	t.Run("allow-list is case sensitive", func(t *testing.T) {
		service := NewAgentService(new(MockSessionRepository), admins, time.Hour)

		_, err := service.Login(ctx, model.LoginRequest{AgentName: "chandan", IsAdmin: true})
		assert.ErrorIs(t, err, ErrInvalidAdminCredentials)
	})

	t.Run("agent name is required", func(t *testing.T) {
		service := NewAgentService(new(MockSessionRepository), admins, time.Hour)

		_, err := service.Login(ctx, model.LoginRequest{AgentName: " "})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "agentName is required", err.Error())
	})

	t.Run("session store down", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		service := NewAgentService(sessions, admins, time.Hour)
		sessions.On("Save", ctx, mock.Anything, time.Hour).Return(errDown)

		_, err := service.Login(ctx, model.LoginRequest{AgentName: "Agent1"})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestAgentService_GetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("touches last activity", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		service := NewAgentService(sessions, admins, time.Hour)
		service.now = func() time.Time { return clockNow }

		stored := &model.Session{ID: "abc", AgentName: "Agent1", CreatedAt: createdAt, LastActiveAt: createdAt}
		sessions.On("Get", ctx, "abc").Return(stored, nil)
		sessions.On("Save", ctx, mock.MatchedBy(func(s *model.Session) bool {
			return s.LastActiveAt.Equal(clockNow)
		}), time.Hour).Return(nil)

		session, err := service.GetSession(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "Agent1", session.AgentName)
		sessions.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		service := NewAgentService(sessions, admins, time.Hour)
		sessions.On("Get", ctx, "nope").Return(nil, repository.ErrSessionNotFound)

		_, err := service.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		service := NewAgentService(new(MockSessionRepository), admins, time.Hour)

		_, err := service.GetSession(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAgentService_Logout(t *testing.T) {
	ctx := context.Background()
	sessions := new(MockSessionRepository)
	service := NewAgentService(sessions, admins, time.Hour)
	sessions.On("Delete", ctx, "abc").Return(nil)

	require.NoError(t, service.Logout(ctx, "abc"))
	sessions.AssertExpectations(t)
}

func TestError_Is(t *testing.T) {
	err := validationError("patientName is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errDown))

	wrapped := storeError("list calls", errDown)
	assert.ErrorIs(t, wrapped, ErrStoreUnavailable)
	assert.ErrorIs(t, wrapped, errDown)
	assert.Equal(t, "failed to list calls: connection refused", wrapped.Error())
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthService_Check(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errDown })

	h := NewHealthService(map[string]Pinger{"postgres": ok, "redis": ok}).Check(context.Background())
	assert.Equal(t, "ok", h.Status)

	h = NewHealthService(map[string]Pinger{"postgres": ok, "redis": down}).Check(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "connection refused", h.Components["redis"])
}
