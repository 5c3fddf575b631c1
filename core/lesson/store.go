package lesson

import (
	"context"
	"fmt"

	"github.com/dibadokht/kelaasor-final/database"
	"github.com/jmoiron/sqlx"
)

func CreateSection(ctx context.Context, db sqlx.ExtContext, s Section) error {
	const q = `
	INSERT INTO sections
		(section_id, course_id, title, index, created_at, updated_at)
	VALUES
		(:section_id, :course_id, :title, :index, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("inserting section: %w", database.WrapError(err))
	}
	return nil
}

func Create(ctx context.Context, db sqlx.ExtContext, l Lesson) error {
	const q = `
	INSERT INTO lessons
		(lesson_id, section_id, title, index, content_url, free, created_at, updated_at)
	VALUES
		(:lesson_id, :section_id, :title, :index, :content_url, :free, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, l); err != nil {
		return fmt.Errorf("inserting lesson: %w", database.WrapError(err))
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, l Lesson) error {
	const q = `
	UPDATE lessons
	SET
		title = :title,
		index = :index,
		content_url = :content_url,
		free = :free,
		updated_at = :updated_at
	WHERE lesson_id = :lesson_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, l); err != nil {
		return fmt.Errorf("updating lesson[%s]: %w", l.ID, database.WrapError(err))
	}
	return nil
}

func FetchSection(ctx context.Context, db sqlx.ExtContext, sectionID string) (Section, error) {
	const q = `
	SELECT * FROM sections
	WHERE section_id = $1`

	var s Section
	if err := sqlx.GetContext(ctx, db, &s, q, sectionID); err != nil {
		return Section{}, fmt.Errorf("selecting section[%s]: %w", sectionID, database.WrapError(err))
	}
	return s, nil
}

func FetchSectionsByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Section, error) {
	const q = `
	SELECT * FROM sections
	WHERE course_id = $1
	ORDER BY index, section_id`

	sections := []Section{}
	if err := sqlx.SelectContext(ctx, db, &sections, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting sections of course[%s]: %w", courseID, database.WrapError(err))
	}
	return sections, nil
}

// Fetch loads a lesson with its course id resolved through the section.
func Fetch(ctx context.Context, db sqlx.ExtContext, lessonID string) (Lesson, error) {
	const q = `
	SELECT l.*, s.course_id FROM lessons AS l
	JOIN sections AS s ON s.section_id = l.section_id
	WHERE l.lesson_id = $1`

	var l Lesson
	if err := sqlx.GetContext(ctx, db, &l, q, lessonID); err != nil {
		return Lesson{}, fmt.Errorf("selecting lesson[%s]: %w", lessonID, database.WrapError(err))
	}
	return l, nil
}

// FetchByCourse lists every lesson of a course in section/lesson order.
func FetchByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Lesson, error) {
	const q = `
	SELECT l.*, s.course_id FROM lessons AS l
	JOIN sections AS s ON s.section_id = l.section_id
	WHERE s.course_id = $1
	ORDER BY s.index, l.index, l.lesson_id`

	lessons := []Lesson{}
	if err := sqlx.SelectContext(ctx, db, &lessons, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting lessons of course[%s]: %w", courseID, database.WrapError(err))
	}
	return lessons, nil
}

// FetchBySection lists the lessons of one section in order.
func FetchBySection(ctx context.Context, db sqlx.ExtContext, sectionID string) ([]Lesson, error) {
	const q = `
	SELECT l.*, s.course_id FROM lessons AS l
	JOIN sections AS s ON s.section_id = l.section_id
	WHERE l.section_id = $1
	ORDER BY l.index, l.lesson_id`

	lessons := []Lesson{}
	if err := sqlx.SelectContext(ctx, db, &lessons, q, sectionID); err != nil {
		return nil, fmt.Errorf("selecting lessons of section[%s]: %w", sectionID, database.WrapError(err))
	}
	return lessons, nil
}
