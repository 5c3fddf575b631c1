package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, title, course_type, price, instructor, active, start_date, end_date, created_at, updated_at, version)
	VALUES
		(:course_id, :title, :course_type, :price, :instructor, :active, :start_date, :end_date, :created_at, :updated_at, :version)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", database.WrapError(err))
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses
	SET
		title = :title,
		course_type = :course_type,
		price = :price,
		instructor = :instructor,
		active = :active,
		start_date = :start_date,
		end_date = :end_date,
		updated_at = :updated_at,
		version = version + 1
	WHERE course_id = :course_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, database.WrapError(err))
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, courseID string) (Course, error) {
	const q = `
	SELECT * FROM courses
	WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, courseID); err != nil {
		return Course{}, fmt.Errorf("selecting course[%s]: %w", courseID, database.WrapError(err))
	}
	return c, nil
}

// FetchActive lists active courses, newest first, optionally narrowed by
// type and price bounds.
func FetchActive(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Course, error) {
	q := `
	SELECT * FROM courses
	WHERE active`

	var args []interface{}
	if f.Type != "" {
		args = append(args, f.Type)
		q += fmt.Sprintf(" AND course_type = $%d", len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		q += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		q += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, strings.TrimSpace(q), args...); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", database.WrapError(err))
	}
	return courses, nil
}

// FetchOwned lists the courses the user holds an active enrollment for.
func FetchOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	const q = `
	SELECT c.* FROM courses AS c
	JOIN enrollments AS e ON e.course_id = c.course_id
	WHERE e.user_id = $1 AND e.status = 'active'
	ORDER BY e.created_at DESC`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, db, &courses, q, userID); err != nil {
		return nil, fmt.Errorf("selecting courses owned by user[%s]: %w", userID, database.WrapError(err))
	}
	return courses, nil
}
