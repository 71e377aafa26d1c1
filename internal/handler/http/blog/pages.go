package blog

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/handler/http/auth"
	"clipscribe/internal/handler/http/requestid"
	"clipscribe/internal/handler/http/web"
	artUC "clipscribe/internal/usecase/article"
)

// HomeHandler renders the generation page.
type HomeHandler struct {
	Renderer *web.Renderer
	Logger   *slog.Logger
}

type homeData struct {
	Username string
}

func (h HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.Render(w, "index", homeData{Username: user.Username}); err != nil {
		h.logRenderError(r, "index", err)
	}
}

func (h HomeHandler) logRenderError(r *http.Request, page string, err error) {
	h.Logger.Error("failed to render page",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("page", page),
		slog.String("error", err.Error()))
}

// ListHandler renders the saved blog posts page for the authenticated
// user.
type ListHandler struct {
	Svc      *artUC.Service
	Renderer *web.Renderer
	Logger   *slog.Logger
}

type listData struct {
	Articles []*entity.Article
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	articles, err := h.Svc.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("failed to list articles",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.Render(w, "all-blogs", listData{Articles: articles}); err != nil {
		h.Logger.Error("failed to render page",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("page", "all-blogs"),
			slog.String("error", err.Error()))
	}
}

// DetailHandler renders a single article. Requests for another user's
// article, a missing article, or a malformed ID all redirect home
// instead of surfacing an error, so the existence of foreign articles
// is never revealed.
type DetailHandler struct {
	Svc      *artUC.Service
	Renderer *web.Renderer
	Logger   *slog.Logger
}

type detailData struct {
	Article *entity.Article
	Content template.HTML
}

func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	article, err := h.Svc.GetOwned(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, artUC.ErrArticleNotFound) || errors.Is(err, artUC.ErrArticleForbidden) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.Logger.Error("failed to load article",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.Int64("article_id", id),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := detailData{
		Article: article,
		// Article content is model-generated HTML produced for this
		// same page; it is stored as-is and rendered unescaped.
		Content: template.HTML(article.Content),
	}
	if err := h.Renderer.Render(w, "blog-details", data); err != nil {
		h.Logger.Error("failed to render page",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("page", "blog-details"),
			slog.String("error", err.Error()))
	}
}
