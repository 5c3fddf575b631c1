package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	Pending   Status = "pending"
	Paid      Status = "paid"
	Cancelled Status = "cancelled"
)

// ErrNotFound means no such order exists for the requesting user.
var ErrNotFound = errors.New("order not found")

// InvalidCoursesError reports the requested course ids that are unknown or
// inactive. The whole creation is rejected: no partial order is ever left.
type InvalidCoursesError struct {
	IDs []string
}

func (e *InvalidCoursesError) Error() string {
	return fmt.Sprintf("one or more courses are invalid or inactive: %s", strings.Join(e.IDs, ", "))
}

// AlreadyEnrolledError reports the requested course ids the user already
// holds an active enrollment for.
type AlreadyEnrolledError struct {
	IDs []string
}

func (e *AlreadyEnrolledError) Error() string {
	return fmt.Sprintf("already enrolled in courses: %s", strings.Join(e.IDs, ", "))
}

// InvalidTransitionError means the order is not pending anymore; it names
// the current status so the caller can tell paid from cancelled.
type InvalidTransitionError struct {
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order already %s", e.Status)
}

type Order struct {
	ID         string     `json:"id" db:"order_id"`
	UserID     string     `json:"userId" db:"user_id"`
	Status     Status     `json:"status" db:"status"`
	TotalPrice int        `json:"totalPrice" db:"total_price"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	PaidAt     *time.Time `json:"paidAt" db:"paid_at"`
	Items      []Item     `json:"items,omitempty" db:"-"`
}

// Item snapshots the course price at order-creation time. The snapshot is
// immutable even if the catalog price later changes.
type Item struct {
	OrderID   string    `json:"orderId" db:"order_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Price     int       `json:"price" db:"price"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type OrderNew struct {
	CourseIDs []string `json:"courseIds" validate:"required,min=1,dive,uuid"`
}

type statusUp struct {
	ID        string     `db:"order_id"`
	Status    Status     `db:"status"`
	UpdatedAt time.Time  `db:"updated_at"`
	PaidAt    *time.Time `db:"paid_at"`
}
