package lesson

import (
	"errors"
	"time"

	"github.com/dibadokht/kelaasor-final/core/course"
)

type Tier int

const (
	// TierPreview exposes lesson metadata only.
	TierPreview Tier = iota
	// TierFull unlocks the lesson content.
	TierFull
)

var (
	// ErrAccessDenied means the caller holds no active enrollment for the
	// course; the client should offer a purchase.
	ErrAccessDenied = errors.New("you must be enrolled in this course to access this content")

	// ErrAccessExpired means the enrollment is active but the offline course
	// is past its end date; the client should render it as expired.
	ErrAccessExpired = errors.New("access to this course has expired")
)

// expired reports whether an offline course is strictly past its end date.
// Online courses and offline courses without an end date never expire.
func expired(c course.Course, today time.Time) bool {
	if c.Type != course.TypeOffline || c.EndDate == nil {
		return false
	}
	return truncate(today).After(truncate(*c.EndDate))
}

func truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolve decides the visibility tier of a lesson for a caller. enrolled
// states whether the caller is authenticated AND holds an active enrollment
// for the course; today is injected by the caller so the decision stays
// deterministic. Listing handlers use the returned tier and ignore the
// error; single-lesson retrieval fails with it. Both paths share this one
// decision, so a preview entry in a listing can never unlock when fetched
// individually.
func Resolve(c course.Course, l Lesson, enrolled bool, today time.Time) (Tier, error) {
	if l.Free {
		return TierFull, nil
	}
	if !enrolled {
		return TierPreview, ErrAccessDenied
	}
	if expired(c, today) {
		return TierPreview, ErrAccessExpired
	}
	return TierFull, nil
}
