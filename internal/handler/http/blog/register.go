package blog

import (
	"log/slog"
	"net/http"

	"clipscribe/internal/handler/http/web"
	artUC "clipscribe/internal/usecase/article"
	genUC "clipscribe/internal/usecase/generate"
)

// Register mounts the blog routes on the mux. All routes require
// authentication; protect wraps each handler with the session check.
func Register(
	mux *http.ServeMux,
	genSvc *genUC.Service,
	artSvc *artUC.Service,
	renderer *web.Renderer,
	protect func(http.Handler) http.Handler,
	logger *slog.Logger,
) {
	mux.Handle("GET /{$}", protect(HomeHandler{Renderer: renderer, Logger: logger}))
	mux.Handle("POST /generate", protect(GenerateHandler{Svc: genSvc, Logger: logger}))
	mux.Handle("GET /blogs", protect(ListHandler{Svc: artSvc, Renderer: renderer, Logger: logger}))
	mux.Handle("GET /blogs/{id}", protect(DetailHandler{Svc: artSvc, Renderer: renderer, Logger: logger}))
}
