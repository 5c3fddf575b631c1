package course

import "time"

type Type string

const (
	TypeOnline  Type = "online"
	TypeOffline Type = "offline"
)

type Course struct {
	ID         string     `json:"id" db:"course_id"`
	Title      string     `json:"title" db:"title"`
	Type       Type       `json:"courseType" db:"course_type"`
	Price      int        `json:"price" db:"price"`
	Instructor string     `json:"instructor" db:"instructor"`
	Active     bool       `json:"active" db:"active"`
	StartDate  *time.Time `json:"startDate" db:"start_date"`
	EndDate    *time.Time `json:"endDate" db:"end_date"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	Version    int        `json:"-" db:"version"`
}

type CourseNew struct {
	Title      string     `json:"title" validate:"required"`
	Type       Type       `json:"courseType" validate:"required,oneof=online offline"`
	Price      int        `json:"price" validate:"gte=0,lte=100000000"`
	Instructor string     `json:"instructor"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
}

type CourseUp struct {
	Title      *string    `json:"title"`
	Price      *int       `json:"price" validate:"omitempty,gte=0,lte=100000000"`
	Instructor *string    `json:"instructor"`
	Active     *bool      `json:"active"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
}

// Filter narrows the public course listing.
type Filter struct {
	Type     Type
	MinPrice *int
	MaxPrice *int
}
