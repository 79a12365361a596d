package handlers

import (
	"errors"
	"strconv"

	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
	"github.com/pura-ai/call-tracker/pkg/logger"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return xhttp.StatusBadRequest
	case services.KindUnauthorized:
		return xhttp.StatusUnauthorized
	case services.KindForbidden:
		return xhttp.StatusForbidden
	case services.KindNotFound:
		return xhttp.StatusNotFound
	case services.KindStoreUnavailable:
		return xhttp.StatusServiceUnavailable
	default:
		return xhttp.StatusInternalServerError
	}
}

// writeServiceError maps a tagged service failure to a JSON error. The
// wrapped store error is logged, never sent to the client.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var (
		kind = services.KindOf(err)
		msg  string
	)
	var e *services.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	if msg == "" {
		msg = xhttp.StatusText(statusFor(kind))
	}

	status := statusFor(kind)
	if status >= xhttp.StatusInternalServerError {
		logger.Error("[handlers] request failed", "path", string(ctx.Path()), "kind", kind, "error", err)
	}
	if kind == "" {
		kind = "internal"
	}
	xhttp.WriteError(ctx, status, string(kind), msg)
}

func writeBadRequest(ctx *xhttp.RequestCtx, msg string) {
	xhttp.WriteError(ctx, xhttp.StatusBadRequest, string(services.KindValidation), msg)
}

func pathID(ctx *xhttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}
