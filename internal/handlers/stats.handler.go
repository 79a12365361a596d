package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
)

const dateLayout = "2006-01-02"

type StatsService interface {
	Stats(ctx context.Context) (*model.CallStats, error)
}

type ActivityReader interface {
	Get(ctx context.Context, date string) (map[string]int64, error)
}

type StatsHandler struct {
	calls    StatsService
	activity ActivityReader
	now      func() time.Time
}

func NewStatsHandler(calls StatsService, activity ActivityReader) *StatsHandler {
	return &StatsHandler{
		calls:    calls,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func RegisterStatsRoutes(g *router.Group, auth *Authenticator, h *StatsHandler) {
	g.GET("/stats", auth.Admin(h.GetStats))
	g.GET("/stats/activity", auth.Admin(h.GetActivity))
}

func (h *StatsHandler) GetStats(ctx *xhttp.RequestCtx) {
	stats, err := h.calls.Stats(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, stats)
}

// GetActivity returns the event counters of one UTC day, today by default.
func (h *StatsHandler) GetActivity(ctx *xhttp.RequestCtx) {
	date := query(ctx, "date")
	if date == "" {
		date = h.now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		writeBadRequest(ctx, "date must be in YYYY-MM-DD format")
		return
	}

	counters, err := h.activity.Get(ctx, date)
	if err != nil {
		writeServiceError(ctx, &services.Error{Kind: services.KindStoreUnavailable, Message: "failed to load activity", Err: err})
		return
	}
	xhttp.WriteJSON(ctx, xhttp.StatusOK, model.ActivityStats{Date: date, Counters: counters})
}
