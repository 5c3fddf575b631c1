package lesson

import (
	"testing"
	"time"

	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestResolve(t *testing.T) {
	today := time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC)

	online := course.Course{Type: course.TypeOnline, StartDate: date(2023, time.January, 1)}
	offline := course.Course{Type: course.TypeOffline}
	offlineEnded := course.Course{Type: course.TypeOffline, EndDate: date(2023, time.March, 14)}
	offlineEndsToday := course.Course{Type: course.TypeOffline, EndDate: date(2023, time.March, 15)}

	free := Lesson{Free: true, ContentURL: "https://cdn.example.com/1"}
	locked := Lesson{Free: false, ContentURL: "https://cdn.example.com/2"}

	tests := []struct {
		name     string
		course   course.Course
		lesson   Lesson
		enrolled bool
		tier     Tier
		err      error
	}{
		{"free lesson visible to anonymous", online, free, false, TierFull, nil},
		{"free lesson of ended offline course still visible", offlineEnded, free, false, TierFull, nil},
		{"locked lesson without enrollment", online, locked, false, TierPreview, ErrAccessDenied},
		{"locked lesson with enrollment", online, locked, true, TierFull, nil},
		{"offline course without end date never expires", offline, locked, true, TierFull, nil},
		{"offline course ended yesterday", offlineEnded, locked, true, TierPreview, ErrAccessExpired},
		{"offline course ending today still open", offlineEndsToday, locked, true, TierFull, nil},
		{"online course never expires", online, locked, true, TierFull, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := Resolve(tt.course, tt.lesson, tt.enrolled, today)
			assert.Equal(t, tt.tier, tier)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestViewTiers(t *testing.T) {
	l := Lesson{ID: "a", Title: "intro", Index: 1, Free: false, ContentURL: "https://cdn.example.com/a"}

	v := l.View(TierPreview)
	p, ok := v.(Preview)
	assert.True(t, ok)
	assert.Equal(t, "intro", p.Title)

	v = l.View(TierFull)
	f, ok := v.(Full)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a", f.ContentURL)
}
