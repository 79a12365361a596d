package xhttp

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/valyala/fasthttp"
)

const slowThreshold = 500 * time.Millisecond

const HeaderRequestID = "X-Request-Id"

var skipPaths = []string{"/api/v1/health", "/metrics"}

type MiddlewareFunc func(next RequestHandler) RequestHandler
type RequestCtx = fasthttp.RequestCtx
type RequestHandler = fasthttp.RequestHandler

func TimeoutMiddleware(timeout time.Duration) MiddlewareFunc {
	return func(next RequestHandler) RequestHandler {
		return fasthttp.TimeoutWithCodeHandler(next, timeout, StatusText(StatusRequestTimeout), StatusRequestTimeout)
	}
}

func CompressMiddleware(level int) MiddlewareFunc {
	return func(next RequestHandler) RequestHandler {
		return fasthttp.CompressHandlerBrotliLevel(next, level, level)
	}
}

func RecoverMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("[xhttp] panic recovered", "error", err, "path", string(ctx.Path()))
				WriteError(ctx, StatusInternalServerError, "internal", StatusText(StatusInternalServerError))
			}
		}()
		next(ctx)
	}
}

// RequestIDMiddleware makes sure every request and response carries an X-Request-Id.
func RequestIDMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		rid := string(ctx.Request.Header.Peek(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
			ctx.Request.Header.Set(HeaderRequestID, rid)
		}
		ctx.Response.Header.Set(HeaderRequestID, rid)
		next(ctx)
	}
}

func RequestLoggerMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		path := string(ctx.Path())
		if shouldSkip(path) {
			next(ctx)
			return
		}

		start := time.Now()
		next(ctx)

		latency := time.Since(start)
		status := ctx.Response.StatusCode()
		fields := []any{
			"status", status,
			"method", string(ctx.Method()),
			"path", path,
			"latency", latency.String(),
			"bytes_in", len(ctx.PostBody()),
			"bytes_out", len(ctx.Response.Body()),
			"ip", ctx.RemoteIP().String(),
			"request_id", string(ctx.Request.Header.Peek(HeaderRequestID)),
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400 || latency > slowThreshold:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}

func shouldSkip(p string) bool {
	for _, sp := range skipPaths {
		if strings.HasPrefix(p, sp) {
			return true
		}
	}
	return false
}
