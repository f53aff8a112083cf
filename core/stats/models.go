package stats

import "time"

// Dashboard is the admin landing aggregate.
type Dashboard struct {
	TotalUsers        int   `json:"total_users"`
	TotalTeachers     int   `json:"total_teachers"`
	TotalStudents     int   `json:"total_students"`
	TotalCourses      int   `json:"total_courses"`
	PublishedCourses  int   `json:"published_courses"`
	TotalEnrollments  int   `json:"total_enrollments"`
	RevenueCents      int64 `json:"revenue_cents"`
	PendingPayments   int   `json:"pending_payments"`
	CompletedPayments int   `json:"completed_payments"`
}

// UserGrowthPoint is one month of signups.
type UserGrowthPoint struct {
	Month   time.Time `json:"month"` // first day of the month, UTC
	Signups int       `json:"signups"`
}

// CoursePerformance aggregates a single course's outcomes.
type CoursePerformance struct {
	CourseID       string  `json:"course_id"`
	Title          string  `json:"title"`
	Enrollments    int     `json:"enrollments"`
	Completions    int     `json:"completions"`
	CompletionRate float64 `json:"completion_rate"` // 0..1
	RevenueCents   int64   `json:"revenue_cents"`
}

// PaymentBreakdown is the per-status payment totals.
type PaymentBreakdown struct {
	Status      string `json:"status"`
	Count       int    `json:"count"`
	AmountCents int64  `json:"amount_cents"`
}
