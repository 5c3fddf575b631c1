package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleUpdateCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var uu UserUp
		if err := web.Decode(w, r, &uu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(uu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		if uu.FirstName != nil {
			usr.FirstName = *uu.FirstName
		}
		if uu.LastName != nil {
			usr.LastName = *uu.LastName
		}
		if uu.Mobile != nil {
			usr.Mobile = *uu.Mobile
		}
		usr.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, usr); err != nil {
			return fmt.Errorf("updating user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}
