package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dibadokht/kelaasor-final/core/cart"
	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/enrollment"
	"github.com/dibadokht/kelaasor-final/database"
	"github.com/dibadokht/kelaasor-final/validate"
	"github.com/jmoiron/sqlx"
)

// dedupe drops repeated ids, preserving the order of first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Place converts a set of course ids into a pending order with immutable
// price snapshots. It is all-or-nothing: any unknown or inactive id rejects
// the whole request, and the order, its items and the cart cleanup commit as
// a single transaction. The staged cart entries of the purchased courses are
// destroyed by the checkout.
func Place(ctx context.Context, db *sqlx.DB, userID string, courseIDs []string) (Order, error) {
	ids := dedupe(courseIDs)

	courses := make([]course.Course, 0, len(ids))
	var invalid []string
	for _, id := range ids {
		c, err := course.Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				invalid = append(invalid, id)
				continue
			}
			return Order{}, fmt.Errorf("fetching course[%s]: %w", id, err)
		}
		if !c.Active {
			invalid = append(invalid, id)
			continue
		}
		courses = append(courses, c)
	}
	if len(invalid) > 0 {
		return Order{}, &InvalidCoursesError{IDs: invalid}
	}

	owned, err := enrollment.ActiveIDs(ctx, db, userID, ids)
	if err != nil {
		return Order{}, fmt.Errorf("checking enrollments: %w", err)
	}
	if len(owned) > 0 {
		return Order{}, &AlreadyEnrolledError{IDs: owned}
	}

	now := time.Now().UTC()
	ord := Order{
		ID:        validate.GenerateID(),
		UserID:    userID,
		Status:    Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, c := range courses {
		ord.TotalPrice += c.Price
		ord.Items = append(ord.Items, Item{
			OrderID:   ord.ID,
			CourseID:  c.ID,
			Price:     c.Price,
			CreatedAt: now,
		})
	}

	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := Create(ctx, tx, ord); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		for _, it := range ord.Items {
			if err := CreateItem(ctx, tx, it); err != nil {
				return fmt.Errorf("creating item: %w", err)
			}
		}

		if err := cart.DeleteItems(ctx, tx, userID, ids); err != nil {
			return fmt.Errorf("clearing checked-out cart items: %w", err)
		}

		return nil
	})
	if err != nil {
		return Order{}, fmt.Errorf("placing order for user[%s]: %w", userID, err)
	}

	return ord, nil
}

// fetchOwned loads the order and verifies ownership. A missing order and an
// order of another user are indistinguishable to the caller.
func fetchOwned(ctx context.Context, db sqlx.ExtContext, orderID string, userID string) (Order, error) {
	ord, err := Fetch(ctx, db, orderID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

// Pay settles a pending order. The status transition and the enrollment
// grants commit as one transaction, guarded by a compare-and-set on the
// status: of two concurrent payments of the same order exactly one wins and
// the loser observes InvalidTransitionError without granting anything.
// Grants are idempotent, so an enrollment already held through another order
// is never duplicated.
func Pay(ctx context.Context, db *sqlx.DB, orderID string, userID string) (Order, error) {
	ord, err := fetchOwned(ctx, db, orderID, userID)
	if err != nil {
		return Order{}, err
	}

	if ord.Status != Pending {
		return Order{}, &InvalidTransitionError{Status: ord.Status}
	}

	items, err := FetchItems(ctx, db, orderID)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	lost := errors.New("transition lost")

	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		up := statusUp{
			ID:        ord.ID,
			Status:    Paid,
			UpdatedAt: now,
			PaidAt:    &now,
		}

		ok, err := updateStatus(ctx, tx, up)
		if err != nil {
			return fmt.Errorf("updating status: %w", err)
		}
		if !ok {
			return lost
		}

		for _, it := range items {
			if err := enrollment.Grant(ctx, tx, userID, it.CourseID); err != nil {
				return fmt.Errorf("granting enrollment: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, lost) {
			cur, err := fetchOwned(ctx, db, orderID, userID)
			if err != nil {
				return Order{}, err
			}
			return Order{}, &InvalidTransitionError{Status: cur.Status}
		}
		return Order{}, fmt.Errorf("paying order[%s]: %w", orderID, err)
	}

	ord.Status = Paid
	ord.UpdatedAt = now
	ord.PaidAt = &now
	ord.Items = items

	return ord, nil
}

// Cancel moves a pending order to cancelled. It never touches enrollments.
func Cancel(ctx context.Context, db *sqlx.DB, orderID string, userID string) (Order, error) {
	ord, err := fetchOwned(ctx, db, orderID, userID)
	if err != nil {
		return Order{}, err
	}

	if ord.Status != Pending {
		return Order{}, &InvalidTransitionError{Status: ord.Status}
	}

	now := time.Now().UTC()
	up := statusUp{
		ID:        ord.ID,
		Status:    Cancelled,
		UpdatedAt: now,
	}

	ok, err := updateStatus(ctx, db, up)
	if err != nil {
		return Order{}, fmt.Errorf("cancelling order[%s]: %w", orderID, err)
	}
	if !ok {
		cur, err := fetchOwned(ctx, db, orderID, userID)
		if err != nil {
			return Order{}, err
		}
		return Order{}, &InvalidTransitionError{Status: cur.Status}
	}

	ord.Status = Cancelled
	ord.UpdatedAt = now

	return ord, nil
}
