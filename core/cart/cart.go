package cart

import (
	"errors"
	"time"
)

var (
	// ErrCourseUnavailable means the course does not exist or is not active.
	ErrCourseUnavailable = errors.New("course is not available")

	// ErrAlreadyEnrolled means the user already owns the course.
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")

	// ErrDuplicateItem means the course is already staged in the cart.
	ErrDuplicateItem = errors.New("course is already in the cart")
)

type Cart struct {
	UserID    string    `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`
	Items     []Item    `json:"items" db:"-"`
}

// Item stages a candidate course. Price is never stored here: listings join
// the live course row so a stale cart reflects current pricing.
type Item struct {
	UserID    string    `json:"-" db:"user_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Price     int       `json:"price" db:"price"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemNew struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}
