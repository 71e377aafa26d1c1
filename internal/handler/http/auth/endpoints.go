package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"clipscribe/internal/handler/http/requestid"
	"clipscribe/internal/handler/http/respond"
	"clipscribe/internal/handler/http/web"
	authUC "clipscribe/internal/usecase/auth"
)

// Handlers bundles the login, signup, and logout endpoints.
type Handlers struct {
	Svc      *authUC.Service
	Renderer *web.Renderer
	Secret   []byte
	Logger   *slog.Logger

	limiter *loginLimiter
}

// NewHandlers creates the auth endpoint handlers. Login attempts are
// rate limited to loginPerMinute per client IP.
func NewHandlers(svc *authUC.Service, renderer *web.Renderer, secret []byte, loginPerMinute int, logger *slog.Logger) *Handlers {
	return &Handlers{
		Svc:      svc,
		Renderer: renderer,
		Secret:   secret,
		Logger:   logger,
		limiter:  newLoginLimiter(loginPerMinute, loginPerMinute),
	}
}

// formData carries the error banner for the login and signup pages.
type formData struct {
	Error string
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "login", "")
}

// Login handles a login form submission. Failed attempts re-render the
// form with a generic error banner.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientIP(r)) {
		recordAuthRequest("login", "rate_limited")
		w.WriteHeader(http.StatusTooManyRequests)
		h.renderForm(w, r, "login", "Too many login attempts. Please try again later.")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, "login", "Invalid form submission.")
		return
	}

	session, err := h.Svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		recordAuthRequest("login", "failure")
		if errors.Is(err, authUC.ErrInvalidCredentials) {
			h.renderForm(w, r, "login", "Invalid username or password.")
			return
		}
		h.Logger.Error("login failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		h.renderForm(w, r, "login", "Something went wrong. Please try again.")
		return
	}

	recordAuthRequest("login", "success")
	h.issueCookieAndRedirect(w, r, session.ID, session.ExpiresAt)
}

// SignupPage renders the signup form.
func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "signup", "")
}

// Signup handles a signup form submission. On success the new user is
// logged in immediately.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, "signup", "Invalid form submission.")
		return
	}

	session, err := h.Svc.Signup(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("repeatPassword"),
	)
	if err != nil {
		recordAuthRequest("signup", "failure")
		switch {
		case errors.Is(err, authUC.ErrPasswordMismatch):
			h.renderForm(w, r, "signup", "Passwords do not match.")
		case errors.Is(err, authUC.ErrAccountCreation):
			h.renderForm(w, r, "signup", "Could not create account. Please try a different username.")
		default:
			h.Logger.Error("signup failed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			h.renderForm(w, r, "signup", "Something went wrong. Please try again.")
		}
		return
	}

	recordAuthRequest("signup", "success")
	h.issueCookieAndRedirect(w, r, session.ID, session.ExpiresAt)
}

// Logout revokes the current session and clears the cookie. Requests
// without a valid session still land on the login page.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if sessionID, err := ParseSessionCookie(cookie.Value, h.Secret); err == nil {
			if err := h.Svc.Logout(r.Context(), sessionID); err != nil {
				h.Logger.Warn("logout failed",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("error", err.Error()))
			}
		}
	}
	recordAuthRequest("logout", "success")
	ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Register mounts the auth routes on the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("GET /logout", h.Logout)
}

func (h *Handlers) issueCookieAndRedirect(w http.ResponseWriter, r *http.Request, sessionID string, expiresAt time.Time) {
	token, err := SignSessionID(sessionID, h.Secret, expiresAt)
	if err != nil {
		h.Logger.Error("failed to sign session token",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	SetSessionCookie(w, token, expiresAt)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, page, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.Render(w, page, formData{Error: errMsg}); err != nil {
		h.Logger.Error("failed to render page",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("page", page),
			slog.String("error", err.Error()))
	}
}
