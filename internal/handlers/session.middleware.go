package handlers

import (
	"context"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
)

const HeaderSessionID = "X-Session-Id"

const identityKey = "identity"

type SessionResolver interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
}

// Authenticator resolves the X-Session-Id header into the caller identity.
type Authenticator struct {
	sessions SessionResolver
}

func NewAuthenticator(sessions SessionResolver) *Authenticator {
	return &Authenticator{sessions: sessions}
}

// Session rejects requests without a live session.
func (a *Authenticator) Session(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		if _, ok := a.authenticate(ctx); ok {
			next(ctx)
		}
	}
}

// Admin additionally requires the session to carry the admin flag.
func (a *Authenticator) Admin(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		id, ok := a.authenticate(ctx)
		if !ok {
			return
		}
		if !id.IsAdmin {
			writeServiceError(ctx, &services.Error{Kind: services.KindForbidden, Message: "administrator access required"})
			return
		}
		next(ctx)
	}
}

func (a *Authenticator) authenticate(ctx *xhttp.RequestCtx) (model.Identity, bool) {
	sid := string(ctx.Request.Header.Peek(HeaderSessionID))
	session, err := a.sessions.GetSession(ctx, sid)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			err = &services.Error{Kind: services.KindUnauthorized, Message: "session expired or invalid"}
		}
		writeServiceError(ctx, err)
		return model.Identity{}, false
	}

	id := session.Identity()
	ctx.SetUserValue(identityKey, id)
	return id, true
}

// IdentityFrom returns the identity stored by the authenticator.
func IdentityFrom(ctx *xhttp.RequestCtx) model.Identity {
	id, _ := ctx.UserValue(identityKey).(model.Identity)
	return id
}
