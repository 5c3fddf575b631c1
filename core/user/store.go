package user

import (
	"context"
	"fmt"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, email, mobile, first_name, last_name, role, password_hash, created_at, updated_at)
	VALUES
		(:user_id, :email, :mobile, :first_name, :last_name, :role, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("inserting user: %w", database.WrapError(err))
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users
	SET
		mobile = :mobile,
		first_name = :first_name,
		last_name = :last_name,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("updating user[%s]: %w", u.ID, database.WrapError(err))
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (User, error) {
	const q = `
	SELECT * FROM users
	WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, userID); err != nil {
		return User{}, fmt.Errorf("selecting user[%s]: %w", userID, database.WrapError(err))
	}
	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `
	SELECT * FROM users
	WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, fmt.Errorf("selecting user by email: %w", database.WrapError(err))
	}
	return u, nil
}
