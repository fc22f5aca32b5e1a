// Package httprouter wires the HTTP surfaces of both binaries: the
// download API and the keep-alive status page.
package httprouter

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"waketube/internal/config"
	"waketube/internal/consts"
	"waketube/internal/errs"
	"waketube/internal/infrastructure/delivery/http/middleware"
	"waketube/internal/infrastructure/delivery/http/request"
	"waketube/internal/infrastructure/delivery/http/response"
	"waketube/internal/observability"
	"waketube/internal/service"
)

//go:embed templates
var templatesFS embed.FS

type chain []func(http.Handler) http.Handler

func (c chain) then(h http.Handler) http.Handler {
	for _, mw := range slices.Backward(c) {
		h = mw(h)
	}
	return h
}

type Router struct {
	*http.ServeMux
	log         *slog.Logger
	cfg         *config.Config
	globalChain []func(http.Handler) http.Handler
	routeChain  []func(http.Handler) http.Handler
	isSubRouter bool
	svc         service.Service
	metrics     *observability.Metrics
	index       *template.Template
}

// New builds the download API router.
func New(log *slog.Logger, cfg *config.Config, svc service.Service, metrics *observability.Metrics) *Router {
	r := &Router{
		ServeMux: http.NewServeMux(),
		log:      log,
		cfg:      cfg,
		svc:      svc,
		metrics:  metrics,
		index:    template.Must(template.ParseFS(templatesFS, "templates/index.html")),
	}

	r.SetGlobalMiddlewares()
	r.SetRoutes()

	return r
}

func (r *Router) Use(middleware ...func(http.Handler) http.Handler) {
	if r.isSubRouter {
		r.routeChain = append(r.routeChain, middleware...)
	} else {
		r.globalChain = append(r.globalChain, middleware...)
	}
}

func (r *Router) Group(fn func(r *Router)) {
	subRouter := &Router{
		isSubRouter: true,
		routeChain:  slices.Clone(r.routeChain),
		ServeMux:    r.ServeMux}

	fn(subRouter)
}

func (r *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, h)
}

func (r *Router) Handle(pattern string, h http.Handler) {
	for _, middleware := range slices.Backward(r.routeChain) {
		h = middleware(h)
	}
	r.ServeMux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.ServeMux

	for _, middleware := range slices.Backward(r.globalChain) {
		h = middleware(h)
	}

	h.ServeHTTP(w, req)
}

func (r *Router) SetGlobalMiddlewares() {
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.Logger,
		middleware.Metrics(r.metrics),
	)
}

func (r *Router) SetRoutes() {
	r.HandleFunc("GET /{$}", r.Index)
	r.HandleFunc("GET /v1/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.HandleFunc("POST /v1/info", r.Info)
	r.HandleFunc("POST /v1/download", r.Download)
	r.HandleFunc("GET /v1/sessions/{id}", r.GetSession)
	r.HandleFunc("DELETE /v1/sessions/{id}", r.ReleaseSession)
	r.Handle("GET /metrics", observability.Handler())
}

func (ro *Router) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := ro.index.Execute(w, nil); err != nil {
		ro.log.ErrorContext(r.Context(), "render index", slog.Any("error", err))
	}
}

func (ro *Router) Info(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "Info")

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.HandlerTimeout)
	defer cancel()

	var in request.Info
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.ErrorContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.BadRequest(w, consts.RespInvalidRequestBody, fmt.Errorf("%w: %w", errs.ErrInvalidRequestBody, err))

		return
	}

	if err := in.Validate(); err != nil {
		log.ErrorContext(ctx, consts.RespUnprocessableEntity, slog.Any("error", err))
		response.UnprocessableEntity(w, consts.RespUnprocessableEntity, err)

		return
	}

	sess, err := ro.svc.FetchInfo(ctx, in.URL, in.SessionID)
	if err != nil {
		log.ErrorContext(ctx, consts.RespInfoFetchFail, slog.Any("error", err))
		response.InternalServerError(w, consts.RespInfoFetchFail, nil, err)

		return
	}

	log.InfoContext(ctx, consts.RespInfoFetched, "session", sess)

	response.OK(w, consts.RespInfoFetched, sess, nil)
}

func (ro *Router) Download(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "Download")

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.DownloadTimeout)
	defer cancel()

	var in request.Download
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.ErrorContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.BadRequest(w, consts.RespInvalidRequestBody, fmt.Errorf("%w: %w", errs.ErrInvalidRequestBody, err))

		return
	}

	if err := in.Validate(); err != nil {
		log.ErrorContext(ctx, consts.RespUnprocessableEntity, slog.Any("error", err))
		response.UnprocessableEntity(w, consts.RespUnprocessableEntity, err)

		return
	}

	path, err := ro.svc.Download(ctx, in.SessionID, in.FormatID)
	if err != nil {
		ro.writeDownloadError(ctx, w, err)

		return
	}

	// The temp dir outlives the engine run only until the file has been
	// streamed back.
	defer ro.svc.Cleanup(ctx, in.SessionID)

	ro.serveFile(ctx, w, path)
}

func (ro *Router) writeDownloadError(ctx context.Context, w http.ResponseWriter, err error) {
	log := ro.log.With("handler", "Download")

	switch {
	case errors.Is(err, errs.ErrSessionNotFound), errors.Is(err, errs.ErrSessionIDEmpty):
		log.ErrorContext(ctx, consts.RespSessionNotFound, slog.Any("error", err))
		response.NotFound(w, consts.RespSessionNotFound, err)
	case errors.Is(err, errs.ErrDownloadInProgress):
		log.WarnContext(ctx, consts.RespDownloadInProgress, slog.Any("error", err))
		response.Conflict(w, consts.RespDownloadInProgress, err)
	case errors.Is(err, errs.ErrUnknownFormat):
		log.ErrorContext(ctx, consts.RespUnprocessableEntity, slog.Any("error", err))
		response.UnprocessableEntity(w, consts.RespUnprocessableEntity, err)
	case errors.Is(err, errs.ErrFileNotFound):
		log.ErrorContext(ctx, consts.RespFileNotFound, slog.Any("error", err))
		response.InternalServerError(w, consts.RespFileNotFound, nil, err)
	default:
		log.ErrorContext(ctx, consts.RespDownloadFail, slog.Any("error", err))
		response.InternalServerError(w, consts.RespDownloadFail, nil, err)
	}
}

func (ro *Router) serveFile(ctx context.Context, w http.ResponseWriter, path string) {
	log := ro.log.With("handler", "Download")

	file, err := os.Open(path)
	if err != nil {
		log.ErrorContext(ctx, consts.RespFileNotFound, slog.Any("error", err))
		response.InternalServerError(w, consts.RespFileNotFound, nil, err)

		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.ErrorContext(ctx, consts.RespFileNotFound, slog.Any("error", err))
		response.InternalServerError(w, consts.RespFileNotFound, nil, err)

		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))

	if _, err := io.Copy(w, file); err != nil {
		log.WarnContext(ctx, "stream file interrupted", slog.Any("error", err))
	}
}

func (ro *Router) GetSession(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "GetSession")

	ctx, cancel := context.WithTimeout(r.Context(), consts.DefaultHandlerTimeout)
	defer cancel()

	id := r.PathValue("id")
	if id == "" {
		log.ErrorContext(ctx, consts.RespQueryParamMissing)
		response.BadRequest(w, consts.RespQueryParamMissing, nil)

		return
	}

	sess, err := ro.svc.Session(ctx, id)
	if err != nil {
		log.DebugContext(ctx, consts.RespSessionNotFound, slog.Any("error", err))
		response.NotFound(w, consts.RespSessionNotFound, err)

		return
	}

	response.OK(w, consts.RespSessionRetrieved, sess, nil)
}

// ReleaseSession drops the session's temp dir ahead of its TTL expiry.
func (ro *Router) ReleaseSession(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With("handler", "ReleaseSession")

	ctx, cancel := context.WithTimeout(r.Context(), consts.DefaultHandlerTimeout)
	defer cancel()

	id := r.PathValue("id")
	if id == "" {
		log.ErrorContext(ctx, consts.RespQueryParamMissing)
		response.BadRequest(w, consts.RespQueryParamMissing, nil)

		return
	}

	ro.svc.Cleanup(ctx, id)
	response.NoContent(w)
}
