package blog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/handler/http/auth"
	"clipscribe/internal/handler/http/requestid"
	"clipscribe/internal/handler/http/respond"
	"clipscribe/internal/infra/media"
	"clipscribe/internal/infra/synthesizer"
	"clipscribe/internal/infra/transcriber"
	genUC "clipscribe/internal/usecase/generate"
)

// GenerateHandler runs the article generation pipeline for the
// authenticated user.
type GenerateHandler struct {
	Svc    *genUC.Service
	Logger *slog.Logger
}

// ServeHTTP generates a blog article from a YouTube link
// @Summary      Generate a blog article
// @Description  Downloads the video audio, transcribes it, and synthesizes an HTML blog article saved to the user's account
// @Tags         blogs
// @Accept       json
// @Produce      json
// @Param        request body GenerateRequest true "Video link"
// @Success      200 {object} GenerateResponse "Generated article"
// @Failure      400 {string} string "Invalid request body or link"
// @Failure      405 {string} string "Method not allowed"
// @Failure      500 {string} string "A pipeline stage failed"
// @Router       /generate [post]
func (h GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.Link == "" {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid data sent"))
		return
	}

	article, err := h.Svc.Generate(r.Context(), user.ID, req.Link)
	if err != nil {
		h.Logger.Warn("generation failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.Int64("user_id", user.ID),
			slog.String("link", req.Link),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, entity.ErrInvalidInput):
			respond.SafeError(w, http.StatusBadRequest, err)
		case errors.Is(err, media.ErrSourceUnavailable), errors.Is(err, media.ErrDownloadFailed):
			respond.Error(w, http.StatusInternalServerError, errors.New("failed to fetch video audio"))
		case errors.Is(err, transcriber.ErrTranscriptionFailed):
			respond.Error(w, http.StatusInternalServerError, errors.New("failed to get transcript"))
		case errors.Is(err, synthesizer.ErrSynthesisFailed):
			respond.Error(w, http.StatusInternalServerError, errors.New("failed to generate blog article"))
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, GenerateResponse{Content: article.Content})
}
