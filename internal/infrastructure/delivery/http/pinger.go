package httprouter

import (
	"html/template"
	"log/slog"
	"net/http"

	"waketube/internal/config"
	"waketube/internal/consts"
	"waketube/internal/infrastructure/delivery/http/middleware"
	"waketube/internal/observability"
	"waketube/internal/pinger"
)

// StatusRouter serves the keep-alive status page.
type StatusRouter struct {
	*http.ServeMux
	log     *slog.Logger
	cfg     *config.Config
	clock   *pinger.BootClock
	journal *pinger.VisitLog
	metrics *observability.Metrics
	page    *template.Template
}

type statusPage struct {
	VirtualNow string
	Lines      []string
}

// NewStatus builds the pinger's HTTP router.
func NewStatus(log *slog.Logger,
	cfg *config.Config,
	clock *pinger.BootClock,
	journal *pinger.VisitLog,
	metrics *observability.Metrics,
) *StatusRouter {
	r := &StatusRouter{
		ServeMux: http.NewServeMux(),
		log:      log,
		cfg:      cfg,
		clock:    clock,
		journal:  journal,
		metrics:  metrics,
		page:     template.Must(template.ParseFS(templatesFS, "templates/status.html")),
	}

	r.ServeMux.HandleFunc("GET /{$}", r.Status)
	r.ServeMux.HandleFunc("GET /v1/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.ServeMux.Handle("GET /metrics", observability.Handler())

	return r
}

func (ro *StatusRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := chain{
		middleware.Recoverer,
		middleware.RequestID,
		middleware.Logger,
		middleware.Metrics(ro.metrics),
	}.then(ro.ServeMux)

	h.ServeHTTP(w, r)
}

// Status renders the virtual uptime clock and the visit log tail.
func (ro *StatusRouter) Status(w http.ResponseWriter, r *http.Request) {
	lines, err := ro.journal.Tail(ro.cfg.Pinger.TailLines)
	if err != nil {
		ro.log.ErrorContext(r.Context(), "read visit log", slog.Any("error", err))
	}

	data := statusPage{
		VirtualNow: ro.clock.VirtualNow().Format(consts.TimeLayout),
		Lines:      lines,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := ro.page.Execute(w, data); err != nil {
		ro.log.ErrorContext(r.Context(), "render status page", slog.Any("error", err))
	}
}
