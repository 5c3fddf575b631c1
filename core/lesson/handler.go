package lesson

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/enrollment"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

// enrolled reports whether the request carries an authenticated user with an
// active enrollment for the course. Anonymous callers are simply not
// enrolled, never an error.
func enrolled(ctx context.Context, db sqlx.ExtContext, courseID string) (bool, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return false, nil
	}
	return enrollment.HasActive(ctx, db, clm.UserID, courseID)
}

func HandleCreateSection(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var sn SectionNew
		if err := web.Decode(w, r, &sn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(sn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if _, err := course.Fetch(ctx, db, sn.CourseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", sn.CourseID, err)
		}

		now := time.Now().UTC()
		s := Section{
			ID:        validate.GenerateID(),
			CourseID:  sn.CourseID,
			Title:     sn.Title,
			Index:     sn.Index,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := CreateSection(ctx, db, s); err != nil {
			return fmt.Errorf("creating section: %w", err)
		}

		return web.Respond(ctx, w, s, http.StatusCreated)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ln LessonNew
		if err := web.Decode(w, r, &ln); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ln); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		s, err := FetchSection(ctx, db, ln.SectionID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching section[%s]: %w", ln.SectionID, err)
		}

		now := time.Now().UTC()
		l := Lesson{
			ID:         validate.GenerateID(),
			SectionID:  s.ID,
			CourseID:   s.CourseID,
			Title:      ln.Title,
			Index:      ln.Index,
			ContentURL: ln.ContentURL,
			Free:       ln.Free,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := Create(ctx, db, l); err != nil {
			return fmt.Errorf("creating lesson: %w", err)
		}

		return web.Respond(ctx, w, l, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		lessonID := web.Param(r, "id")
		if err := validate.CheckID(lessonID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		var lu LessonUp
		if err := web.Decode(w, r, &lu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(lu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		l, err := Fetch(ctx, db, lessonID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching lesson[%s]: %w", lessonID, err)
		}

		if lu.Title != nil {
			l.Title = *lu.Title
		}
		if lu.Index != nil {
			l.Index = *lu.Index
		}
		if lu.ContentURL != nil {
			l.ContentURL = *lu.ContentURL
		}
		if lu.Free != nil {
			l.Free = *lu.Free
		}
		l.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, l); err != nil {
			return fmt.Errorf("updating lesson[%s]: %w", lessonID, err)
		}

		return web.Respond(ctx, w, l, http.StatusOK)
	}
}

// HandleListSections lists the sections of a course with their lessons at
// preview tier. Content is only ever unlocked through the lesson endpoints.
func HandleListSections(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		sections, err := FetchSectionsByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching sections of course[%s]: %w", courseID, err)
		}

		for i := range sections {
			lessons, err := FetchBySection(ctx, db, sections[i].ID)
			if err != nil {
				return fmt.Errorf("fetching lessons of section[%s]: %w", sections[i].ID, err)
			}
			sections[i].Lessons = make([]Preview, 0, len(lessons))
			for _, l := range lessons {
				sections[i].Lessons = append(sections[i].Lessons, l.preview())
			}
		}

		return web.Respond(ctx, w, sections, http.StatusOK)
	}
}

// HandleListByCourse lists the lessons of a course, each serialized at the
// tier the access policy resolves for this caller. Errors from the policy
// are ignored here: listings degrade to preview, they never refuse.
func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		c, err := course.Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		enr, err := enrolled(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("checking enrollment: %w", err)
		}

		lessons, err := FetchByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching lessons of course[%s]: %w", courseID, err)
		}

		today := time.Now().UTC()
		views := make([]interface{}, 0, len(lessons))
		for _, l := range lessons {
			tier, _ := Resolve(c, l, enr, today)
			views = append(views, l.View(tier))
		}

		return web.Respond(ctx, w, views, http.StatusOK)
	}
}

// HandleShow retrieves one lesson. The same policy decision used by the
// listing applies; here its refusals become responses: 403 without an
// enrollment, 410 when an offline course is past its end date.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		lessonID := web.Param(r, "id")
		if err := validate.CheckID(lessonID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		l, err := Fetch(ctx, db, lessonID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching lesson[%s]: %w", lessonID, err)
		}

		c, err := course.Fetch(ctx, db, l.CourseID)
		if err != nil {
			return fmt.Errorf("fetching course[%s]: %w", l.CourseID, err)
		}

		enr, err := enrolled(ctx, db, l.CourseID)
		if err != nil {
			return fmt.Errorf("checking enrollment: %w", err)
		}

		tier, err := Resolve(c, l, enr, time.Now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, ErrAccessDenied):
				return weberr.NewError(err, err.Error(), http.StatusForbidden)
			case errors.Is(err, ErrAccessExpired):
				return weberr.NewError(err, err.Error(), http.StatusGone)
			}
			return err
		}

		return web.Respond(ctx, w, l.View(tier), http.StatusOK)
	}
}
