package lesson

import "time"

type Section struct {
	ID        string    `json:"id" db:"section_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Index     int       `json:"index" db:"index"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Lessons   []Preview `json:"lessons" db:"-"`
}

type SectionNew struct {
	CourseID string `json:"courseId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Index    int    `json:"index" validate:"gte=0"`
}

// Lesson belongs to a section; its course is reached through the section.
// The course_id field is populated by the store join.
type Lesson struct {
	ID         string    `json:"id" db:"lesson_id"`
	SectionID  string    `json:"sectionId" db:"section_id"`
	CourseID   string    `json:"courseId" db:"course_id"`
	Title      string    `json:"title" db:"title"`
	Index      int       `json:"index" db:"index"`
	ContentURL string    `json:"contentUrl" db:"content_url"`
	Free       bool      `json:"free" db:"free"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

type LessonNew struct {
	SectionID  string `json:"sectionId" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Index      int    `json:"index" validate:"gte=0"`
	ContentURL string `json:"contentUrl" validate:"omitempty,url"`
	Free       bool   `json:"free"`
}

type LessonUp struct {
	Title      *string `json:"title"`
	Index      *int    `json:"index" validate:"omitempty,gte=0"`
	ContentURL *string `json:"contentUrl" validate:"omitempty,url"`
	Free       *bool   `json:"free"`
}

// Preview is the metadata-only serialization of a lesson: no content url.
type Preview struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Index int    `json:"index"`
	Free  bool   `json:"free"`
}

// Full is the unlocked serialization of a lesson.
type Full struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Index      int    `json:"index"`
	Free       bool   `json:"free"`
	ContentURL string `json:"contentUrl"`
}

func (l Lesson) preview() Preview {
	return Preview{ID: l.ID, Title: l.Title, Index: l.Index, Free: l.Free}
}

func (l Lesson) full() Full {
	return Full{ID: l.ID, Title: l.Title, Index: l.Index, Free: l.Free, ContentURL: l.ContentURL}
}

// View serializes the lesson at the given access tier.
func (l Lesson) View(t Tier) interface{} {
	if t == TierFull {
		return l.full()
	}
	return l.preview()
}
