package auth

import (
	"context"
	"net/http"

	"clipscribe/internal/domain/entity"
	authUC "clipscribe/internal/usecase/auth"
)

type ctxKey string

const ctxUser ctxKey = "user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}

// UserFromContext returns the authenticated user stored by Protect.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(ctxUser).(*entity.User)
	return user, ok
}

// Protect requires a valid session for the wrapped handler. Requests
// without one are redirected to the login page; the session cookie is
// verified against its signature first and then resolved against the
// session store, so logout revocation takes effect immediately.
func Protect(svc *authUC.Service, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			sessionID, err := ParseSessionCookie(cookie.Value, secret)
			if err != nil {
				ClearSessionCookie(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			user, err := svc.Resolve(r.Context(), sessionID)
			if err != nil {
				ClearSessionCookie(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
