package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dibadokht/kelaasor-final/api/background"
	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/user"
	"github.com/dibadokht/kelaasor-final/events"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

// toWebErr maps engine errors to responses; anything unrecognized bubbles up
// as an internal error.
func toWebErr(err error) error {
	var invalid *InvalidCoursesError
	var enrolled *AlreadyEnrolledError
	var transition *InvalidTransitionError

	switch {
	case errors.Is(err, ErrNotFound):
		return weberr.NotFound(err)
	case errors.As(err, &invalid), errors.As(err, &enrolled), errors.As(err, &transition):
		return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}
	return err
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		usr, err := user.Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		if !usr.ProfileComplete() {
			err := errors.New("please enter your name and firstname")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var on OrderNew
		if err := web.Decode(w, r, &on); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(on); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		ord, err := Place(ctx, db, clm.UserID, on.CourseIDs)
		if err != nil {
			return toWebErr(err)
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func HandlePay(db *sqlx.DB, pub events.Publisher, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		ord, err := Pay(ctx, db, orderID, clm.UserID)
		if err != nil {
			return toWebErr(err)
		}

		courseIDs := make([]string, 0, len(ord.Items))
		for _, it := range ord.Items {
			courseIDs = append(courseIDs, it.CourseID)
		}

		bg.Add(func() {
			ctx := context.Background()

			evt, err := events.NewOrderPaid(ord.ID, ord.UserID, courseIDs, ord.TotalPrice)
			if err == nil {
				err = pub.Publish(ctx, evt)
			}
			if err != nil {
				bg.Log().WithField("order_id", ord.ID).Warnf("publishing %s: %v", events.TypeOrderPaid, err)
			}

			for _, courseID := range courseIDs {
				evt, err := events.NewEnrollmentGranted(ord.UserID, courseID)
				if err == nil {
					err = pub.Publish(ctx, evt)
				}
				if err != nil {
					bg.Log().WithField("course_id", courseID).Warnf("publishing %s: %v", events.TypeEnrollmentGranted, err)
				}
			}
		})

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func HandleCancel(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		ord, err := Cancel(ctx, db, orderID, clm.UserID)
		if err != nil {
			return toWebErr(err)
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orders, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching orders: %w", err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		ord, err := fetchOwned(ctx, db, orderID, clm.UserID)
		if err != nil {
			return toWebErr(err)
		}

		items, err := FetchItems(ctx, db, orderID)
		if err != nil {
			return fmt.Errorf("fetching items of order[%s]: %w", orderID, err)
		}
		ord.Items = items

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}
