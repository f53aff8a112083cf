package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/stats"
	"github.com/darisacademy/daris/core/user"
	testutil "github.com/darisacademy/daris/tests"
)

func Test_statsApi(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	free := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	priced := testutil.CreateCourse(t, env.crsRepo, teacher, "أساسيات البرمجة بلغة Python", course.StatusPublished, 1500)
	testutil.CreateCourse(t, env.crsRepo, teacher, "Hidden Draft", course.StatusDraft, 0)

	testutil.CreateEnrollment(t, env.enrRepo, free, hero)
	testutil.CreateEnrollment(t, env.enrRepo, priced, hero)
	testutil.CreateEnrollment(t, env.enrRepo, free, other)
	testutil.CreatePayment(t, env.pmtRepo, hero, priced, payment.StatusCompleted)
	testutil.CreatePayment(t, env.pmtRepo, other, priced, payment.StatusPending)

	adminToken := getToken(t, admin)

	t.Run("Admin required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats/dashboard", getToken(t, teacher))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("dashboard", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, stats.Dashboard{
				TotalUsers:        4,
				TotalTeachers:     1,
				TotalStudents:     2,
				TotalCourses:      3,
				PublishedCourses:  2,
				TotalEnrollments:  3,
				RevenueCents:      1500,
				PendingPayments:   1,
				CompletedPayments: 1,
			}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats/dashboard", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("user growth counts this month's signups", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats/user-growth?months=1", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var points []stats.UserGrowthPoint
		if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(points) != 1 || points[0].Signups != 4 {
			t.Errorf("failed! unexpected growth points: %+v", points)
		}
	})

	t.Run("course performance sorted by enrollments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats/courses", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var perfs []stats.CoursePerformance
		if err := json.Unmarshal(rec.Body.Bytes(), &perfs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(perfs) != 3 {
			t.Fatalf("failed! len(perfs) = %d; want 3", len(perfs))
		}
		if perfs[0].CourseID != free.ID || perfs[0].Enrollments != 2 {
			t.Errorf("failed! unexpected leader: %+v", perfs[0])
		}
		if perfs[1].CourseID != priced.ID || perfs[1].RevenueCents != 1500 {
			t.Errorf("failed! unexpected runner-up: %+v", perfs[1])
		}
	})

	t.Run("payment breakdown", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				stats.PaymentBreakdown{Status: "completed", Count: 1, AmountCents: 1500},
				stats.PaymentBreakdown{Status: "pending", Count: 1, AmountCents: 1500},
			),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats/payments", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("overview bundles all aggregates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/stats", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var ov stats.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if ov.Dashboard.TotalUsers != 4 {
			t.Errorf("failed! total_users = %d; want 4", ov.Dashboard.TotalUsers)
		}
		if len(ov.Courses) != 3 || len(ov.Payments) != 2 {
			t.Errorf("failed! courses = %d, payments = %d", len(ov.Courses), len(ov.Payments))
		}
	})
}
