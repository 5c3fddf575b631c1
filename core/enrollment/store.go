package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

// Grant inserts an active enrollment for (user, course). It is idempotent:
// an existing active row is left untouched and a cancelled row is
// reactivated rather than duplicated.
func Grant(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) error {
	const q = `
	INSERT INTO enrollments
		(user_id, course_id, status, created_at, updated_at)
	VALUES
		(:user_id, :course_id, :status, :created_at, :updated_at)
	ON CONFLICT (user_id, course_id) DO UPDATE
	SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	e := Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		Status:    Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := sqlx.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("granting enrollment of user[%s] to course[%s]: %w", userID, courseID, database.WrapError(err))
	}
	return nil
}

// HasActive reports whether the user currently holds an active enrollment
// for the course.
func HasActive(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (bool, error) {
	const q = `
	SELECT COUNT(*) FROM enrollments
	WHERE user_id = $1 AND course_id = $2 AND status = 'active'`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID, courseID); err != nil {
		return false, fmt.Errorf("checking enrollment of user[%s] to course[%s]: %w", userID, courseID, database.WrapError(err))
	}
	return n > 0, nil
}

// ActiveIDs returns the subset of courseIDs the user holds an active
// enrollment for.
func ActiveIDs(ctx context.Context, db sqlx.ExtContext, userID string, courseIDs []string) ([]string, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	const q = `
	SELECT course_id FROM enrollments
	WHERE user_id = ? AND course_id IN (?) AND status = 'active'`

	query, args, err := sqlx.In(q, userID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("building enrollment query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var ids []string
	if err := sqlx.SelectContext(ctx, db, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("selecting enrollments of user[%s]: %w", userID, database.WrapError(err))
	}
	return ids, nil
}

// FetchByUser lists the user's enrollments, most recent first.
func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Summary, error) {
	const q = `
	SELECT e.*, c.title FROM enrollments AS e
	JOIN courses AS c ON c.course_id = e.course_id
	WHERE e.user_id = $1
	ORDER BY e.created_at DESC`

	enrollments := []Summary{}
	if err := sqlx.SelectContext(ctx, db, &enrollments, q, userID); err != nil {
		return nil, fmt.Errorf("selecting enrollments of user[%s]: %w", userID, database.WrapError(err))
	}
	return enrollments, nil
}
