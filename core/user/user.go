package user

import "time"

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	Mobile       string    `json:"mobile" db:"mobile"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         string    `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileComplete reports whether the user filled in their names. Checkout
// is gated on this at the handler layer.
func (u User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != ""
}

type UserSignup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Mobile   string `json:"mobile" validate:"omitempty,e164"`
}

type UserUp struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Mobile    *string `json:"mobile" validate:"omitempty,e164"`
}
