package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darisacademy/daris/core"
)

// Status is the payment lifecycle state. Transitions follow a fixed table;
// arbitrary admin-driven jumps (e.g. completed -> pending) are rejected.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle may move from s to next.
// Manual correction of a completed payment goes through refund, never back
// to pending.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted:
		return next == StatusRefunded
	case StatusFailed, StatusRefunded:
		return false
	}
	return false
}

type Payment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	Reference   string    `json:"reference,omitempty"` // provider transaction reference
	CreatedAt   time.Time `json:"created_at"`          // UTC
	UpdatedAt   time.Time `json:"updated_at"`          // UTC

	// joined for admin review and receipts; not payment columns
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
}

// UpdateStatus is the admin status override payload.
type UpdateStatus struct {
	Status    Status `json:"status" validate:"required,paymentstatus"`
	Reference string `json:"reference"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Reference = core.CleanString(us.Reference)
	return validate.Struct(us)
}

type QueryFilter struct {
	UserID      string    `query:"user_id"`
	CourseID    string    `query:"course_id"`
	Status      Status    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.CourseID == "" && qf.Status == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}
