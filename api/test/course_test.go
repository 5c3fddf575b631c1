package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dibadokht/kelaasor-final/core/course"
)

type courseTest struct {
	*TestEnv
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// createCourseOK creates a course as admin and restores an anonymous session.
func (ct *courseTest) createCourseOK(t *testing.T, cn course.CourseNew) course.Course {
	t.Helper()

	ct.Login(t, ct.AdminEmail, ct.AdminPass)
	defer ct.Logout(t)

	w := ct.Request(t, http.MethodPost, "/courses", cn)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create course: status code %s", w.Status)
	}

	var c course.Course
	Decode(t, w, &c)
	return c
}

func (ct *courseTest) updateCourseOK(t *testing.T, id string, cu map[string]interface{}) course.Course {
	t.Helper()

	ct.Login(t, ct.AdminEmail, ct.AdminPass)
	defer ct.Logout(t)

	w := ct.Request(t, http.MethodPut, "/courses/"+id, cu)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't update course: status code %s", w.Status)
	}

	var c course.Course
	Decode(t, w, &c)
	return c
}

func TestCourse(t *testing.T) {
	env, err := NewTestEnv(t, "course_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}

	c1 := ct.createCourseOK(t, course.CourseNew{
		Title:     "Go from scratch",
		Type:      course.TypeOnline,
		Price:     100,
		StartDate: datePtr(2023, time.January, 10),
	})
	c2 := ct.createCourseOK(t, course.CourseNew{
		Title: "Workshop weekend",
		Type:  course.TypeOffline,
		Price: 250,
	})

	t.Run("online course requires start date", func(t *testing.T) {
		ct.Login(t, ct.AdminEmail, ct.AdminPass)
		defer ct.Logout(t)

		w := ct.Request(t, http.MethodPost, "/courses", course.CourseNew{
			Title: "Broken online",
			Type:  course.TypeOnline,
			Price: 10,
		})
		defer w.Body.Close()

		if w.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got status code %s", w.Status)
		}
	})

	t.Run("create requires admin", func(t *testing.T) {
		w := ct.Request(t, http.MethodPost, "/courses", course.CourseNew{Title: "Anon", Type: course.TypeOffline})
		defer w.Body.Close()
		if w.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for anonymous, got status code %s", w.Status)
		}

		ct.Login(t, ct.UserEmail, ct.UserPass)
		defer ct.Logout(t)

		w = ct.Request(t, http.MethodPost, "/courses", course.CourseNew{Title: "Student", Type: course.TypeOffline})
		defer w.Body.Close()
		if w.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 for non-admin, got status code %s", w.Status)
		}
	})

	t.Run("public listing", func(t *testing.T) {
		w := ct.Request(t, http.MethodGet, "/courses", nil)
		var courses []course.Course
		Decode(t, w, &courses)

		if len(courses) != 2 {
			t.Fatalf("expected 2 active courses, got %d", len(courses))
		}

		w = ct.Request(t, http.MethodGet, "/courses?course_type=offline", nil)
		Decode(t, w, &courses)
		if len(courses) != 1 || courses[0].ID != c2.ID {
			t.Fatalf("type filter returned wrong courses: %+v", courses)
		}

		w = ct.Request(t, http.MethodGet, "/courses?max_price=150", nil)
		Decode(t, w, &courses)
		if len(courses) != 1 || courses[0].ID != c1.ID {
			t.Fatalf("price filter returned wrong courses: %+v", courses)
		}
	})

	t.Run("deactivated course hidden", func(t *testing.T) {
		ct.updateCourseOK(t, c2.ID, map[string]interface{}{"active": false})

		w := ct.Request(t, http.MethodGet, "/courses/"+c2.ID, nil)
		defer w.Body.Close()
		if w.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for inactive course, got status code %s", w.Status)
		}

		w = ct.Request(t, http.MethodGet, "/courses", nil)
		var courses []course.Course
		Decode(t, w, &courses)
		if len(courses) != 1 {
			t.Fatalf("expected 1 active course, got %d", len(courses))
		}
	})
}
