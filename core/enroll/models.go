package enroll

import "time"

// Enrollment joins a student to a course. (course_id, student_id) is unique
// at the storage layer; enrolling twice yields the same row.
type Enrollment struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	StudentID   string     `json:"student_id"`
	ProgressPct float64    `json:"progress_pct"`
	EnrolledAt  time.Time  `json:"enrolled_at"`            // UTC
	CompletedAt *time.Time `json:"completed_at,omitempty"` // set when ProgressPct hits 100

	// joined for listings; not enrollment columns
	CourseTitle string `json:"course_title,omitempty"`
	StudentName string `json:"student_name,omitempty"`
}

func (e *Enrollment) Completed() bool { return e.CompletedAt != nil }
