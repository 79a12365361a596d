package xhttp

import (
	"os"
	"os/signal"
	"reflect"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/valyala/fasthttp"
)

var DefaultServerOption = ServerOption{
	Name:               "call-tracker",
	IdleTimeout:        time.Second * 10,
	MaxRequestBodySize: 1 * 1024 * 1024,
	ReadBufferSize:     1024 * 8,
	WriteBufferSize:    1024 * 8,
	ReadTimeout:        time.Millisecond * 2500,
	WriteTimeout:       time.Millisecond * 2500,
	Concurrency:        10_000,
}

type RequestHeader = fasthttp.RequestHeader
type ResponseHeader = fasthttp.ResponseHeader
type Server = fasthttp.Server

type ServerOption struct {
	Name string

	// idle keep-alive connections are closed after this long
	IdleTimeout time.Duration

	MaxRequestBodySize int
	ReadBufferSize     int
	WriteBufferSize    int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	Concurrency        int
}

type Engine struct {
	*Router
	*Server
	middle []MiddlewareFunc
}

func newServer(options ServerOption) *fasthttp.Server {
	return &fasthttp.Server{
		Name:                  options.Name,
		Concurrency:           options.Concurrency,
		ReadBufferSize:        options.ReadBufferSize,
		WriteBufferSize:       options.WriteBufferSize,
		ReadTimeout:           options.ReadTimeout,
		WriteTimeout:          options.WriteTimeout,
		IdleTimeout:           options.IdleTimeout,
		MaxRequestBodySize:    options.MaxRequestBodySize,
		NoDefaultServerHeader: true,
		CloseOnShutdown:       true,
		TCPKeepalive:          true,
		Logger:                logger.GetLogger(),
		ErrorHandler: func(ctx *RequestCtx, err error) {
			logger.Warn("[xhttp] error", "error", err, "path", string(ctx.Path()))
		},
	}
}

func NewServer(options ServerOption) *Engine {
	return &Engine{
		Server: newServer(options),
		Router: CreateDefaultRouter(),
	}
}

func CreateServer() *Engine {
	return NewServer(DefaultServerOption)
}

func (e *Engine) ListenAndServe(addr string) error {
	e.DoRouting()
	logger.Info("[xhttp] server is listening", "addr", addr)
	return e.Server.ListenAndServe(addr)
}

// DoRouting builds the final handler; the first middleware passed to Use
// is the outermost one.
func (e *Engine) DoRouting() RequestHandler {
	for method, route := range e.Router.List() {
		for _, r := range route {
			logger.Debug("[xhttp] route registered", "method", method, "path", r)
		}
	}
	handler := e.Router.Handler
	middle := slices.Clone(e.middle)
	slices.Reverse(middle)
	for _, m := range middle {
		handler = m(handler)
		logger.Debug("[xhttp] middleware registered", "name", runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	e.Server.Handler = handler
	return handler
}

// CloseOnSignal shuts the server down on SIGINT/SIGTERM and closes done afterwards.
func (e *Engine) CloseOnSignal() <-chan struct{} {
	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig
		e.Shutdown()
		close(done)
	}()
	return done
}

// Use adds middleware to the end of the chain.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Shutdown gracefully shuts down the server without interrupting any active connections.
func (e *Engine) Shutdown() {
	logger.Info("[xhttp] server is shutting down", "pid", os.Getpid())
	if err := e.Server.Shutdown(); err != nil {
		logger.Error("[xhttp] error while shutting down", "error", err)
	}
}
