package health

import (
	"net/http"

	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports whether the document store and, when configured, Redis
// are reachable.
type Handler struct {
	Client *mongo.Client
	Redis  redis.UniversalClient // nil when Redis is not configured
	Log    *zap.Logger
}

func NewHandler(client *mongo.Client, rdb redis.UniversalClient, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Redis: rdb, Log: logger}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Cache    string            `json:"cache"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Serve handles GET /health. It answers 200 when every configured backend
// responds and 503 otherwise:
//
//	{ "status":"error", "database":"connected", "cache":"disconnected", "errors":{"cache":"…"} }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "health check")
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected", Cache: "disabled"}
	fail := func(part string, err error) {
		h.Log.Error("health-check failed", zap.String("part", part), zap.Error(err))
		if resp.Errors == nil {
			resp.Errors = map[string]string{}
		}
		resp.Errors[part] = err.Error()
		resp.Status = "error"
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		resp.Database = "disconnected"
		fail("database", err)
	}
	if h.Redis != nil {
		resp.Cache = "connected"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			resp.Cache = "disconnected"
			fail("cache", err)
		}
	}

	if resp.Status != "ok" {
		httpjson.Write(w, http.StatusServiceUnavailable, resp)
		return
	}
	httpjson.OK(w, resp)
}
