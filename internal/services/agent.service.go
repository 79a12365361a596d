package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/prom"
)

type SessionRepository interface {
	Save(ctx context.Context, s *model.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// AgentService logs agents in by name. The admin flag is only granted to
// names on the configured allow-list.
type AgentService struct {
	sessions  SessionRepository
	admins    []string
	ttl       time.Duration
	validator *Validator
	now       func() time.Time
}

func NewAgentService(sessions SessionRepository, admins []string, ttl time.Duration) *AgentService {
	return &AgentService{
		sessions:  sessions,
		admins:    admins,
		ttl:       ttl,
		validator: NewValidator(ValidationOptions{}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AgentService) IsAdminName(name string) bool {
	return slices.Contains(s.admins, name)
}

// Login opens a session. Requesting admin rights for a name that is not on
// the allow-list fails with ErrInvalidAdminCredentials and creates nothing.
func (s *AgentService) Login(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if req.IsAdmin && !s.IsAdminName(req.AgentName) {
		logger.Warn("[agents] rejected admin login", "agent", req.AgentName)
		return nil, ErrInvalidAdminCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:           newSessionID(),
		AgentName:    req.AgentName,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, storeError("create session", err)
	}

	role := "agent"
	if session.IsAdmin {
		role = "admin"
	}
	prom.AddLogin(role)
	return session, nil
}

// GetSession returns a live session and extends its expiry.
func (s *AgentService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &Error{Kind: KindUnauthorized, Message: "session id is required"}
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, notFoundError("session not found")
		}
		return nil, storeError("load session", err)
	}

	session.LastActiveAt = s.now()
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		logger.Warn("[agents] session touch failed", "agent", session.AgentName, "error", err)
	}
	return session, nil
}

func (s *AgentService) Logout(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return storeError("delete session", err)
	}
	return nil
}

// newSessionID returns 32 random hex characters.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
