package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/enrollment"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		crt, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart: %w", err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleCreateItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		c, err := course.Fetch(ctx, db, in.CourseID)
		if err != nil && !errors.Is(err, database.ErrDBNotFound) {
			return fmt.Errorf("fetching course[%s]: %w", in.CourseID, err)
		}
		if errors.Is(err, database.ErrDBNotFound) || !c.Active {
			return weberr.NewError(ErrCourseUnavailable, ErrCourseUnavailable.Error(), http.StatusUnprocessableEntity)
		}

		enrolled, err := enrollment.HasActive(ctx, db, clm.UserID, in.CourseID)
		if err != nil {
			return fmt.Errorf("checking enrollment: %w", err)
		}
		if enrolled {
			return weberr.NewError(ErrAlreadyEnrolled, ErrAlreadyEnrolled.Error(), http.StatusUnprocessableEntity)
		}

		it, err := CreateItem(ctx, db, clm.UserID, in.CourseID)
		if err != nil {
			if errors.Is(err, ErrDuplicateItem) {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
			return fmt.Errorf("staging course[%s] in cart: %w", in.CourseID, err)
		}

		it.Title = c.Title
		it.Price = c.Price

		return web.Respond(ctx, w, it, http.StatusCreated)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		if err := DeleteItem(ctx, db, clm.UserID, courseID); err != nil {
			return fmt.Errorf("deleting cart item[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Delete(ctx, db, clm.UserID); err != nil {
			return fmt.Errorf("flushing cart: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
