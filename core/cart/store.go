package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

// upsert makes sure the user's cart row exists and bumps its version.
func upsert(ctx context.Context, db sqlx.ExtContext, userID string, now time.Time) error {
	const q = `
	INSERT INTO carts
		(user_id, created_at, updated_at, version)
	VALUES
		($1, $2, $2, 1)
	ON CONFLICT (user_id) DO UPDATE
	SET updated_at = $2, version = carts.version + 1`

	if _, err := db.ExecContext(ctx, q, userID, now); err != nil {
		return fmt.Errorf("upserting cart of user[%s]: %w", userID, database.WrapError(err))
	}
	return nil
}

// CreateItem stages courseID into the user's cart.
func CreateItem(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Item, error) {
	const q = `
	INSERT INTO cart_items
		(user_id, course_id, created_at, updated_at)
	VALUES
		(:user_id, :course_id, :created_at, :updated_at)`

	now := time.Now().UTC()
	it := Item{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := upsert(ctx, db, userID, now); err != nil {
		return Item{}, err
	}

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		if errors.Is(database.WrapError(err), database.ErrDBDuplicatedEntry) {
			return Item{}, ErrDuplicateItem
		}
		return Item{}, fmt.Errorf("inserting cart item[%s] for user[%s]: %w", courseID, userID, database.WrapError(err))
	}

	return it, nil
}

// FetchItems lists the user's cart entries in insertion order, joined with
// the live course title and price.
func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `
	SELECT i.user_id, i.course_id, c.title, c.price, i.created_at, i.updated_at
	FROM cart_items AS i
	JOIN courses AS c ON c.course_id = i.course_id
	WHERE i.user_id = $1
	ORDER BY i.seq`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items of user[%s]: %w", userID, database.WrapError(err))
	}
	return items, nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `
	SELECT * FROM carts
	WHERE user_id = $1`

	var crt Cart
	if err := sqlx.GetContext(ctx, db, &crt, q, userID); err != nil {
		if errors.Is(database.WrapError(err), database.ErrDBNotFound) {
			return Cart{UserID: userID, Items: []Item{}}, nil
		}
		return Cart{}, fmt.Errorf("selecting cart of user[%s]: %w", userID, database.WrapError(err))
	}

	items, err := FetchItems(ctx, db, userID)
	if err != nil {
		return Cart{}, err
	}
	crt.Items = items

	return crt, nil
}

// DeleteItem removes a single entry. It is scoped by user: a user can only
// ever remove their own entries.
func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) error {
	const q = `
	DELETE FROM cart_items
	WHERE user_id = $1 AND course_id = $2`

	if _, err := db.ExecContext(ctx, q, userID, courseID); err != nil {
		return fmt.Errorf("deleting cart item[%s] of user[%s]: %w", courseID, userID, database.WrapError(err))
	}
	return nil
}

// DeleteItems removes the entries for the given courses, if present.
func DeleteItems(ctx context.Context, db sqlx.ExtContext, userID string, courseIDs []string) error {
	if len(courseIDs) == 0 {
		return nil
	}

	const q = `
	DELETE FROM cart_items
	WHERE user_id = ? AND course_id IN (?)`

	query, args, err := sqlx.In(q, userID, courseIDs)
	if err != nil {
		return fmt.Errorf("building cart delete query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting cart items of user[%s]: %w", userID, database.WrapError(err))
	}
	return nil
}

// Delete flushes every entry of the user's cart.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `
	DELETE FROM cart_items
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("flushing cart of user[%s]: %w", userID, database.WrapError(err))
	}
	return nil
}
