package test

import (
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/enrollment"
	"github.com/dibadokht/kelaasor-final/core/order"
)

type orderTest struct {
	*TestEnv
}

func (ot *orderTest) createOrderOK(t *testing.T, courseIDs []string) order.Order {
	t.Helper()

	w := ot.Request(t, http.MethodPost, "/orders", order.OrderNew{CourseIDs: courseIDs})
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create order: status code %s", w.Status)
	}

	var ord order.Order
	Decode(t, w, &ord)
	return ord
}

func (ot *orderTest) payOK(t *testing.T, orderID string) order.Order {
	t.Helper()

	w := ot.Request(t, http.MethodPost, "/orders/"+orderID+"/pay", nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't pay order[%s]: status code %s", orderID, w.Status)
	}

	var ord order.Order
	Decode(t, w, &ord)
	return ord
}

func (ot *orderTest) fetchEnrollments(t *testing.T) []enrollment.Summary {
	t.Helper()

	w := ot.Request(t, http.MethodGet, "/enrollments", nil)
	var enrollments []enrollment.Summary
	Decode(t, w, &enrollments)
	return enrollments
}

func TestOrder(t *testing.T) {
	env, err := NewTestEnv(t, "order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}
	rt := &cartTest{env}
	ot := &orderTest{env}

	c1 := ct.createCourseOK(t, course.CourseNew{
		Title:     "Go from scratch",
		Type:      course.TypeOnline,
		Price:     100,
		StartDate: datePtr(2023, time.January, 10),
	})
	c3 := ct.createCourseOK(t, course.CourseNew{
		Title: "Databases workshop",
		Type:  course.TypeOffline,
		Price: 50,
	})
	c4 := ct.createCourseOK(t, course.CourseNew{
		Title: "Testing in practice",
		Type:  course.TypeOffline,
		Price: 100,
	})
	c5 := ct.createCourseOK(t, course.CourseNew{
		Title: "Refactoring",
		Type:  course.TypeOffline,
		Price: 80,
	})

	env.Login(t, env.UserEmail, env.UserPass)
	defer env.Logout(t)

	t.Run("checkout and payment grant enrollment", func(t *testing.T) {
		rt.createItemOK(t, c1.ID)

		ord := ot.createOrderOK(t, []string{c1.ID})
		if ord.Status != order.Pending {
			t.Fatalf("expected pending order, got %s", ord.Status)
		}
		if ord.TotalPrice != 100 {
			t.Fatalf("expected total 100, got %d", ord.TotalPrice)
		}

		// The checkout destroys the staged cart entry.
		if items := rt.fetchItems(t); len(items) != 0 {
			t.Fatalf("expected empty cart after checkout, got %d items", len(items))
		}

		paid := ot.payOK(t, ord.ID)
		if paid.Status != order.Paid {
			t.Fatalf("expected paid order, got %s", paid.Status)
		}
		if paid.PaidAt == nil {
			t.Fatal("expected paid_at to be stamped")
		}

		enrollments := ot.fetchEnrollments(t)
		if len(enrollments) != 1 || enrollments[0].CourseID != c1.ID || enrollments[0].Status != enrollment.Active {
			t.Fatalf("expected one active enrollment for course[%s], got %+v", c1.ID, enrollments)
		}
	})

	t.Run("paying twice fails without double granting", func(t *testing.T) {
		w := ot.Request(t, http.MethodGet, "/orders", nil)
		var orders []order.Order
		Decode(t, w, &orders)
		paidID := orders[0].ID

		w = ot.Request(t, http.MethodPost, "/orders/"+paidID+"/pay", nil)
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for second payment, got status code %s", w.Status)
		}

		if enrollments := ot.fetchEnrollments(t); len(enrollments) != 1 {
			t.Fatalf("expected exactly one enrollment, got %d", len(enrollments))
		}
	})

	t.Run("already enrolled course cannot be ordered again", func(t *testing.T) {
		w := ot.Request(t, http.MethodPost, "/orders", order.OrderNew{CourseIDs: []string{c1.ID}})
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for re-purchase, got status code %s", w.Status)
		}
	})

	t.Run("invalid id rejects the whole order", func(t *testing.T) {
		w := ot.Request(t, http.MethodGet, "/orders", nil)
		var before []order.Order
		Decode(t, w, &before)

		missing := "e7a9b3c1-0000-0000-0000-000000000000"
		w = ot.Request(t, http.MethodPost, "/orders", order.OrderNew{CourseIDs: []string{c3.ID, missing}})
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for invalid course, got status code %s", w.Status)
		}

		w = ot.Request(t, http.MethodGet, "/orders", nil)
		var after []order.Order
		Decode(t, w, &after)
		if len(after) != len(before) {
			t.Fatalf("expected no order persisted, got %d new", len(after)-len(before))
		}
	})

	t.Run("malformed id rejected before the catalog", func(t *testing.T) {
		w := ot.Request(t, http.MethodPost, "/orders", order.OrderNew{CourseIDs: []string{"not-a-uuid"}})
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for malformed course id, got status code %s", w.Status)
		}
	})

	t.Run("price snapshots survive catalog changes", func(t *testing.T) {
		ord := ot.createOrderOK(t, []string{c4.ID, c3.ID})
		if ord.TotalPrice != 150 {
			t.Fatalf("expected total 150, got %d", ord.TotalPrice)
		}

		ct.updateCourseOK(t, c3.ID, map[string]interface{}{"price": 75})
		env.Login(t, env.UserEmail, env.UserPass)

		w := ot.Request(t, http.MethodGet, "/orders/"+ord.ID, nil)
		var got order.Order
		Decode(t, w, &got)

		if got.TotalPrice != 150 {
			t.Fatalf("expected snapshotted total 150, got %d", got.TotalPrice)
		}
		if len(got.Items) != 2 || got.Items[0].CourseID != c4.ID || got.Items[1].CourseID != c3.ID {
			t.Fatalf("expected items in the order they were placed, got %+v", got.Items)
		}
		if got.Items[1].Price != 50 {
			t.Fatalf("expected snapshotted price 50, got %d", got.Items[1].Price)
		}
	})

	t.Run("cancelled order stays cancelled and grants nothing", func(t *testing.T) {
		ord := ot.createOrderOK(t, []string{c5.ID})

		w := ot.Request(t, http.MethodPost, "/orders/"+ord.ID+"/cancel", nil)
		var got order.Order
		Decode(t, w, &got)
		if got.Status != order.Cancelled {
			t.Fatalf("expected cancelled order, got %s", got.Status)
		}

		w = ot.Request(t, http.MethodPost, "/orders/"+ord.ID+"/pay", nil)
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 paying a cancelled order, got status code %s", w.Status)
		}

		for _, e := range ot.fetchEnrollments(t) {
			if e.CourseID == c5.ID {
				t.Fatal("cancel must never grant an enrollment")
			}
		}
	})

	t.Run("duplicated ids collapse into one item", func(t *testing.T) {
		ord := ot.createOrderOK(t, []string{c5.ID, c5.ID, c5.ID})
		if ord.TotalPrice != 80 {
			t.Fatalf("expected total 80 for deduplicated order, got %d", ord.TotalPrice)
		}
		if len(ord.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(ord.Items))
		}
	})

	t.Run("someone else's order is not found", func(t *testing.T) {
		ord := ot.createOrderOK(t, []string{c3.ID})

		env.Login(t, env.AdminEmail, env.AdminPass)
		w := ot.Request(t, http.MethodPost, "/orders/"+ord.ID+"/pay", nil)
		defer w.Body.Close()
		if w.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for foreign order, got status code %s", w.Status)
		}
		env.Login(t, env.UserEmail, env.UserPass)
	})

	t.Run("concurrent payments have exactly one winner", func(t *testing.T) {
		c6 := ct.createCourseOK(t, course.CourseNew{
			Title: "Systems design",
			Type:  course.TypeOffline,
			Price: 60,
		})

		env.Login(t, env.UserEmail, env.UserPass)
		ord := ot.createOrderOK(t, []string{c6.ID})

		codes := make(chan int, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				r, err := http.NewRequest(http.MethodPost, env.URL+"/orders/"+ord.ID+"/pay", nil)
				if err != nil {
					codes <- 0
					return
				}
				w, err := env.Client().Do(r)
				if err != nil {
					codes <- 0
					return
				}
				w.Body.Close()
				codes <- w.StatusCode
			}()
		}
		wg.Wait()
		close(codes)

		got := []int{}
		for code := range codes {
			got = append(got, code)
		}
		sort.Ints(got)
		if got[0] != http.StatusOK || got[1] != http.StatusUnprocessableEntity {
			t.Fatalf("expected one 200 and one 422, got %v", got)
		}

		var granted int
		for _, e := range ot.fetchEnrollments(t) {
			if e.CourseID == c6.ID {
				granted++
			}
		}
		if granted != 1 {
			t.Fatalf("expected a single enrollment for course[%s], got %d", c6.ID, granted)
		}
	})

	t.Run("incomplete profile cannot checkout", func(t *testing.T) {
		const email, pass = "noname@test.com", "nonamepass123"
		if err := env.SeedUser(email, pass, "USER", "", ""); err != nil {
			t.Fatal(err)
		}

		env.Login(t, email, pass)
		defer env.Login(t, env.UserEmail, env.UserPass)

		w := ot.Request(t, http.MethodPost, "/orders", order.OrderNew{CourseIDs: []string{c3.ID}})
		defer w.Body.Close()
		if w.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for incomplete profile, got status code %s", w.Status)
		}
	})
}
