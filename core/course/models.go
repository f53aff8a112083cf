package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darisacademy/daris/core"
)

// Status is the course lifecycle state. Transitions are monotonic:
// draft -> published -> archived; going backwards is rejected.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusPublished:
		return 1
	case StatusArchived:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether the lifecycle may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return next.Valid() && next.rank() > s.rank()
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID           string `json:"id"`
	TeacherID    string `json:"teacher_id"`
	TeacherName  string `json:"teacher_name,omitempty"` // joined; not a course column
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        Level  `json:"level"`
	Status       Status `json:"status"`
	IsFree       bool   `json:"is_free"`
	PriceCents   int64  `json:"price_cents"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// denormalized counters, recomputed server-side; never written by clients
	EnrollmentCount int     `json:"enrollment_count"`
	TotalLessons    int     `json:"total_lessons"`
	DurationMins    int     `json:"duration_mins"`
	Rating          float64 `json:"rating"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c *Course) IsPublished() bool { return c.Status == StatusPublished }

type Lesson struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	OrderIndex   int       `json:"order_index"` // sort key; not necessarily contiguous
	VideoURL     string    `json:"video_url,omitempty"`
	DurationMins int       `json:"duration_mins"`
	IsFree       bool      `json:"is_free"` // previewable without enrollment
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
	Level       Level  `json:"level" validate:"required,courselevel"`
	IsFree      bool   `json:"is_free"`
	PriceCents  int64  `json:"price_cents" validate:"omitempty,gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category, true /* lower */)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if !nc.IsFree && nc.PriceCents == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "price_cents", Error: "a priced course requires a price"})
	}
	return nil
}

// UpdateCourse defines what information may be provided to modify an existing
// Course. Empty fields are kept as-is. Status is not updatable here; see
// ServiceInterface.SetStatus.
type UpdateCourse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        Level  `json:"level" validate:"omitempty,courselevel"`
	IsFree       *bool  `json:"is_free"`
	PriceCents   *int64 `json:"price_cents" validate:"omitempty,gte=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	if uc.Title == "" {
		uc.Title = orig.Title
	}
	uc.Description = core.CleanString(uc.Description)
	if uc.Description == "" {
		uc.Description = orig.Description
	}
	uc.Category = core.CleanString(uc.Category, true /* lower */)
	if uc.Category == "" {
		uc.Category = orig.Category
	}
	if uc.Level == "" {
		uc.Level = orig.Level
	}
	return validate.Struct(uc)
}

// NewLesson contains information needed to add a Lesson to a Course.
type NewLesson struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	OrderIndex   *int   `json:"order_index" validate:"omitempty,gte=0"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	DurationMins int    `json:"duration_mins" validate:"omitempty,gte=0"`
	IsFree       bool   `json:"is_free"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Description = core.CleanString(nl.Description)
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify an existing Lesson.
type UpdateLesson struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	OrderIndex   *int   `json:"order_index" validate:"omitempty,gte=0"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	DurationMins *int   `json:"duration_mins" validate:"omitempty,gte=0"`
	IsFree       *bool  `json:"is_free"`
}

func (ul *UpdateLesson) Validate(orig Lesson, validate *validator.Validate) error {
	ul.Title = core.CleanString(ul.Title)
	if ul.Title == "" {
		ul.Title = orig.Title
	}
	ul.Description = core.CleanString(ul.Description)
	if ul.Description == "" {
		ul.Description = orig.Description
	}
	return validate.Struct(ul)
}

type QueryFilter struct {
	// Search does a case-insensitive match on title, description or category.
	Search    string `query:"search"`
	Category  string `query:"category"`
	Level     Level  `query:"level"`
	Status    Status `query:"status"`
	TeacherID string `query:"teacher_id"`
	IsFree    *bool  `query:"is_free"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Level == "" &&
		qf.Status == "" && qf.TeacherID == "" && qf.IsFree == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}
