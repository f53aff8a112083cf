package progress

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// LessonProgress tracks a single student's progress through a single lesson.
// (lesson_id, student_id) is unique at the storage layer; all writes are
// upserts against that key. Completion is one-way: once IsCompleted is set it
// is never cleared, and CompletedAt keeps its first value.
type LessonProgress struct {
	ID          string     `json:"id,omitempty"`
	LessonID    string     `json:"lesson_id"`
	StudentID   string     `json:"student_id"`
	WatchedSecs int        `json:"watched_secs"`
	Played      float64    `json:"played"` // fraction of the video watched, 0..1
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"`             // UTC
}

// Started reports whether any progress has been persisted. A zero-value
// LessonProgress is the valid "not started" state, not an error.
func (lp *LessonProgress) Started() bool { return !lp.UpdatedAt.IsZero() }

// RecordInput is a partial-watch progress report from the video player.
type RecordInput struct {
	WatchedSecs int     `json:"watched_secs" validate:"gte=0"`
	Played      float64 `json:"played" validate:"gte=0,lte=1"`
}

func (ri RecordInput) Validate(validate *validator.Validate) error {
	return validate.Struct(ri)
}
