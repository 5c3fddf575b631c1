package enrollment

import "time"

type Status string

const (
	Active    Status = "active"
	Cancelled Status = "cancelled"
)

// Enrollment is the authoritative record of a user's access to a course.
// The (user_id, course_id) pair is unique at the storage layer.
type Enrollment struct {
	UserID    string    `json:"userId" db:"user_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Summary is an enrollment joined with its course title for listings.
type Summary struct {
	Enrollment
	CourseTitle string `json:"courseTitle" db:"title"`
}
