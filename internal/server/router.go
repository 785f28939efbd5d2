package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RouterOptions tunes the ambient middleware. Zero values pick sane defaults.
type RouterOptions struct {
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter wires the operation surface: every route traffics JSON bodies,
// errors use the stable `{"error", "error_code"}` shape.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)
	r.Use(corsMiddleware)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit * 2)
		}
		rl := newIPRateLimiter(rate.Limit(opts.RateLimit), burst, 2*time.Minute)
		r.Use(rl.middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/room", wrap(h.AdmitRoom))
	r.Get("/room", wrap(h.GetRoom))

	r.Post("/room-manage", wrap(h.ManageRoom))
	r.Get("/room-manage", wrap(h.GetRoomSettings))

	r.Post("/room-leave", wrap(h.LeaveRoom))
	r.Get("/room-leave", wrap(h.PreviewLeave))

	r.Post("/state", wrap(h.PostEntry))
	r.Get("/state", wrap(h.GetState))
	r.Delete("/state", wrap(h.UndoEntry))

	r.Post("/focus", wrap(h.SetFocus))
	r.Get("/focus", wrap(h.GetFocus))

	r.Get("/room-suggestions", wrap(h.SuggestRooms))
	r.Post("/room-suggestions", wrap(h.ValidateRoomCode))

	return r
}
