package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
)

const (
	userIDKey = "user_id"
	roleKey   = "user_role"
)

// LoadAndSave adapts the scs session middleware to the web.Handler chain.
// It must be the outermost middleware: every handler below it can read and
// write the session.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			sh.ServeHTTP(w, r)
			return err
		}
		return h
	}
	return m
}

// Authenticate loads the session identity into the request claims. Requests
// without a logged-in session are rejected.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, userIDKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			clm := claims.Claims{
				UserID: userID,
				Role:   session.GetString(ctx, roleKey),
			}

			ctx = claims.Set(ctx, clm)
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Identify is like Authenticate but lets anonymous requests through without
// claims: endpoints serving both tiers use it.
func Identify(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if userID := session.GetString(ctx, userIDKey); userID != "" {
				clm := claims.Claims{
					UserID: userID,
					Role:   session.GetString(ctx, roleKey),
				}
				ctx = claims.Set(ctx, clm)
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin requires an authenticated session with the admin role.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, userIDKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			role := session.GetString(ctx, roleKey)
			if role != claims.RoleAdmin {
				err := errors.New("user is not an admin")
				return weberr.NewError(err, "not allowed to access resource", http.StatusForbidden)
			}

			ctx = claims.Set(ctx, claims.Claims{UserID: userID, Role: role})
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// login renews the session token and binds it to the user. Renewal prevents
// session fixation.
func login(ctx context.Context, session *scs.SessionManager, userID string, role string) error {
	if err := session.RenewToken(ctx); err != nil {
		return err
	}
	session.Put(ctx, userIDKey, userID)
	session.Put(ctx, roleKey, role)
	return nil
}
