package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/lesson"
)

type lessonTest struct {
	*TestEnv
}

// createLessonOK creates a lesson as admin and restores an anonymous session.
func (lt *lessonTest) createLessonOK(t *testing.T, ln lesson.LessonNew) lesson.Lesson {
	t.Helper()

	lt.Login(t, lt.AdminEmail, lt.AdminPass)
	defer lt.Logout(t)

	w := lt.Request(t, http.MethodPost, "/lessons", ln)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create lesson: status code %s", w.Status)
	}

	var l lesson.Lesson
	Decode(t, w, &l)
	return l
}

func (lt *lessonTest) createSectionOK(t *testing.T, sn lesson.SectionNew) lesson.Section {
	t.Helper()

	lt.Login(t, lt.AdminEmail, lt.AdminPass)
	defer lt.Logout(t)

	w := lt.Request(t, http.MethodPost, "/sections", sn)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create section: status code %s", w.Status)
	}

	var s lesson.Section
	Decode(t, w, &s)
	return s
}

func (lt *lessonTest) fetchLesson(t *testing.T, id string) (int, lesson.Full) {
	t.Helper()

	w := lt.Request(t, http.MethodGet, "/lessons/"+id, nil)
	if w.StatusCode != http.StatusOK {
		w.Body.Close()
		return w.StatusCode, lesson.Full{}
	}

	var l lesson.Full
	Decode(t, w, &l)
	return w.StatusCode, l
}

func TestLessonAccess(t *testing.T) {
	env, err := NewTestEnv(t, "lesson_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}
	ot := &orderTest{env}
	lt := &lessonTest{env}

	crs := ct.createCourseOK(t, course.CourseNew{
		Title: "Distributed systems",
		Type:  course.TypeOffline,
		Price: 200,
	})
	sec := lt.createSectionOK(t, lesson.SectionNew{
		CourseID: crs.ID,
		Title:    "Foundations",
		Index:    0,
	})

	free := lt.createLessonOK(t, lesson.LessonNew{
		SectionID:  sec.ID,
		Title:      "Introduction",
		Index:      0,
		ContentURL: "https://cdn.example.com/ds/intro.mp4",
		Free:       true,
	})
	locked := lt.createLessonOK(t, lesson.LessonNew{
		SectionID:  sec.ID,
		Title:      "Consensus",
		Index:      1,
		ContentURL: "https://cdn.example.com/ds/consensus.mp4",
	})

	t.Run("free lesson is open to anonymous callers", func(t *testing.T) {
		code, l := lt.fetchLesson(t, free.ID)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got status code %d", code)
		}
		if l.ContentURL != free.ContentURL {
			t.Fatalf("expected content url %q, got %q", free.ContentURL, l.ContentURL)
		}
	})

	t.Run("locked lesson refuses anonymous and unenrolled callers", func(t *testing.T) {
		if code, _ := lt.fetchLesson(t, locked.ID); code != http.StatusForbidden {
			t.Fatalf("expected 403 for anonymous, got status code %d", code)
		}

		env.Login(t, env.UserEmail, env.UserPass)
		defer env.Logout(t)

		if code, _ := lt.fetchLesson(t, locked.ID); code != http.StatusForbidden {
			t.Fatalf("expected 403 for unenrolled, got status code %d", code)
		}
	})

	t.Run("listing degrades locked lessons to preview", func(t *testing.T) {
		w := lt.Request(t, http.MethodGet, "/courses/"+crs.ID+"/lessons", nil)
		var lessons []lesson.Full
		Decode(t, w, &lessons)

		if len(lessons) != 2 {
			t.Fatalf("expected 2 lessons, got %d", len(lessons))
		}
		if lessons[0].ContentURL == "" {
			t.Fatal("expected free lesson to carry its content url")
		}
		if lessons[1].ContentURL != "" {
			t.Fatal("expected locked lesson without content url")
		}
	})

	t.Run("enrollment unlocks the course", func(t *testing.T) {
		env.Login(t, env.UserEmail, env.UserPass)
		defer env.Logout(t)

		ord := ot.createOrderOK(t, []string{crs.ID})
		ot.payOK(t, ord.ID)

		code, l := lt.fetchLesson(t, locked.ID)
		if code != http.StatusOK {
			t.Fatalf("expected 200 for enrolled user, got status code %d", code)
		}
		if l.ContentURL != locked.ContentURL {
			t.Fatalf("expected content url %q, got %q", locked.ContentURL, l.ContentURL)
		}

		w := lt.Request(t, http.MethodGet, "/courses/"+crs.ID+"/lessons", nil)
		var lessons []lesson.Full
		Decode(t, w, &lessons)
		for _, got := range lessons {
			if got.ContentURL == "" {
				t.Fatalf("expected full listing for enrolled user, lesson[%s] is preview", got.ID)
			}
		}
	})

	t.Run("course ending today stays open", func(t *testing.T) {
		today := time.Now().UTC()
		ct.updateCourseOK(t, crs.ID, map[string]interface{}{
			"endDate": time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		})

		env.Login(t, env.UserEmail, env.UserPass)
		defer env.Logout(t)

		if code, _ := lt.fetchLesson(t, locked.ID); code != http.StatusOK {
			t.Fatalf("expected 200 on the end date itself, got status code %d", code)
		}
	})

	t.Run("ended course expires paid access but not free lessons", func(t *testing.T) {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		ct.updateCourseOK(t, crs.ID, map[string]interface{}{"endDate": yesterday})

		env.Login(t, env.UserEmail, env.UserPass)
		defer env.Logout(t)

		if code, _ := lt.fetchLesson(t, locked.ID); code != http.StatusGone {
			t.Fatalf("expected 410 for ended course, got status code %d", code)
		}
		if code, _ := lt.fetchLesson(t, free.ID); code != http.StatusOK {
			t.Fatalf("expected free lesson to outlive the course, got status code %d", code)
		}

		w := lt.Request(t, http.MethodGet, "/courses/"+crs.ID+"/lessons", nil)
		var lessons []lesson.Full
		Decode(t, w, &lessons)
		for _, got := range lessons {
			if got.ID == locked.ID && got.ContentURL != "" {
				t.Fatal("expected listing of an ended course to degrade to preview")
			}
		}
	})

	t.Run("sections listing never exposes content urls", func(t *testing.T) {
		env.Login(t, env.UserEmail, env.UserPass)
		defer env.Logout(t)

		w := lt.Request(t, http.MethodGet, "/courses/"+crs.ID+"/sections", nil)
		var sections []struct {
			ID      string `json:"id"`
			Lessons []struct {
				ID         string `json:"id"`
				ContentURL string `json:"contentUrl"`
			} `json:"lessons"`
		}
		Decode(t, w, &sections)

		if len(sections) != 1 || len(sections[0].Lessons) != 2 {
			t.Fatalf("expected 1 section with 2 lessons, got %+v", sections)
		}
		for _, l := range sections[0].Lessons {
			if l.ContentURL != "" {
				t.Fatalf("section listing leaked content url for lesson[%s]", l.ID)
			}
		}
	})
}
