package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/user"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/rate"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func HandleSignup(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var us user.UserSignup
		if err := web.Decode(w, r, &us); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(us); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(us.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Email:        us.Email,
			Mobile:       us.Mobile,
			Role:         claims.RoleUser,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				err := errors.New("email already registered")
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return fmt.Errorf("creating user: %w", err)
		}

		if err := login(ctx, session, usr.ID, usr.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager, limiter *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if !limiter.Check(in.Email) {
			err := errors.New("too many login attempts")
			return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
		}

		usr, err := user.FetchByEmail(ctx, db, in.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotAuthorized(errors.New("wrong credentials"))
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(in.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong credentials"))
		}

		if err := login(ctx, session, usr.ID, usr.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
