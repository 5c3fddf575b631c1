package order

import (
	"context"
	"fmt"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, status, total_price, created_at, updated_at, paid_at)
	VALUES
		(:order_id, :user_id, :status, :total_price, :created_at, :updated_at, :paid_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", database.WrapError(err))
	}
	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items
		(order_id, course_id, price, created_at)
	VALUES
		(:order_id, :course_id, :price, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting order item: %w", database.WrapError(err))
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, orderID string) (Order, error) {
	const q = `
	SELECT * FROM orders
	WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, orderID); err != nil {
		return Order{}, fmt.Errorf("selecting order[%s]: %w", orderID, database.WrapError(err))
	}
	return ord, nil
}

// FetchItems lists the items of an order in the order they were placed.
func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	const q = `
	SELECT order_id, course_id, price, created_at FROM order_items
	WHERE order_id = $1
	ORDER BY seq`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting items of order[%s]: %w", orderID, database.WrapError(err))
	}
	return items, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Order, error) {
	const q = `
	SELECT * FROM orders
	WHERE user_id = $1
	ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q, userID); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, database.WrapError(err))
	}
	return orders, nil
}

// updateStatus moves a pending order to its terminal status. It is a
// compare-and-set: the WHERE clause only matches pending rows, so of two
// concurrent transitions exactly one reports ok.
func updateStatus(ctx context.Context, db sqlx.ExtContext, up statusUp) (ok bool, err error) {
	const q = `
	UPDATE orders
	SET status = :status, updated_at = :updated_at, paid_at = :paid_at
	WHERE order_id = :order_id AND status = 'pending'`

	res, err := sqlx.NamedExecContext(ctx, db, q, up)
	if err != nil {
		return false, fmt.Errorf("updating status of order[%s]: %w", up.ID, database.WrapError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking status update of order[%s]: %w", up.ID, err)
	}
	return n == 1, nil
}
