package api

import (
	"context"
	"net/http"
	"time"

	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck
//
// Reports the reachability of the summary and conversation stores and the uptime.
func HealthCheckHandler(caches *Caches, chatEnabled bool, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := dtos.HealthResponse{
			Status:        "ok",
			Uptime:        time.Since(upSince).Round(time.Second).String(),
			UpSince:       upSince,
			Summaries:     cacheHealth(ctx, caches.Backend, caches.Summaries),
			Conversations: cacheHealth(ctx, caches.Backend, caches.Conversations),
			ChatEnabled:   chatEnabled,
		}

		if resp.Summaries.Status != "ok" || resp.Conversations.Status != "ok" {
			resp.Status = "down"
			common.RespondSuccess(w, initTime, constants.MsgUnhealthy, resp, http.StatusServiceUnavailable)
			return
		}

		common.RespondSuccess(w, initTime, constants.MsgHealthy, resp)
	}
}

// itemCounter is implemented by caches that can report their size cheaply.
type itemCounter interface {
	ItemCount() int
}

func cacheHealth(ctx context.Context, backend string, c common.CacheInterface) dtos.CacheHealth {
	h := dtos.CacheHealth{Backend: backend, Status: "ok"}
	if err := c.Ping(ctx); err != nil {
		h.Status = "down"
		h.Error = err.Error()
		return h
	}
	if counter, ok := c.(itemCounter); ok {
		n := counter.ItemCount()
		h.Entries = &n
	}
	return h
}

// RootHandler handles GET /
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, time.Now(), constants.MsgWelcome, nil)
	}
}
