package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if cn.Type == TypeOnline && cn.StartDate == nil {
			err := errors.New("an online course requires a start date")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		c := Course{
			ID:         validate.GenerateID(),
			Title:      cn.Title,
			Type:       cn.Type,
			Price:      cn.Price,
			Instructor: cn.Instructor,
			Active:     true,
			StartDate:  cn.StartDate,
			EndDate:    cn.EndDate,
			CreatedAt:  now,
			UpdatedAt:  now,
			Version:    1,
		}

		if err := Create(ctx, db, c); err != nil {
			return fmt.Errorf("creating course: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		var cu CourseUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		if cu.Title != nil {
			c.Title = *cu.Title
		}
		if cu.Price != nil {
			c.Price = *cu.Price
		}
		if cu.Instructor != nil {
			c.Instructor = *cu.Instructor
		}
		if cu.Active != nil {
			c.Active = *cu.Active
		}
		if cu.StartDate != nil {
			c.StartDate = cu.StartDate
		}
		if cu.EndDate != nil {
			c.EndDate = cu.EndDate
		}

		if c.Type == TypeOnline && c.StartDate == nil {
			err := errors.New("an online course requires a start date")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return fmt.Errorf("updating course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f, err := parseFilter(r)
		if err != nil {
			return weberr.BadRequest(err)
		}

		courses, err := FetchActive(ctx, db, f)
		if err != nil {
			return fmt.Errorf("fetching courses: %w", err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courses, err := FetchOwned(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching owned courses: %w", err)
		}

		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		if !c.Active {
			return weberr.NotFound(fmt.Errorf("course[%s] is not active", courseID))
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func parseFilter(r *http.Request) (Filter, error) {
	var f Filter

	if t := r.URL.Query().Get("course_type"); t != "" {
		if Type(t) != TypeOnline && Type(t) != TypeOffline {
			return Filter{}, fmt.Errorf("unknown course type %q", t)
		}
		f.Type = Type(t)
	}

	for name, dst := range map[string]**int{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if s := r.URL.Query().Get(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return Filter{}, fmt.Errorf("%s is not a valid price", name)
			}
			*dst = &n
		}
	}

	return f, nil
}
