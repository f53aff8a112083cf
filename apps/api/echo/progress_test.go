package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/progress"
	"github.com/darisacademy/daris/core/user"
	testutil "github.com/darisacademy/daris/tests"
)

func Test_progressApi_record(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	outsider := testutil.CreateUser(t, env.usrRepo, "Outsider", "outsider@test.cd", "", user.RoleStudent, true)

	crs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	lsn := testutil.CreateLesson(t, env.crsRepo, crs, "Routing", 1, 12, false)
	preview := testutil.CreateLesson(t, env.crsRepo, crs, "Intro", 0, 3, true)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)

	token := getToken(t, student)
	path := "/v1/progress/lessons/" + lsn.ID

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unknown lesson", token: token, path: "/v1/progress/lessons/lol",
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 10, Played: 0.1}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrLessonNotFound.Error()}),
		},
		{
			name: "enrollment required", token: getToken(t, outsider),
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 10, Played: 0.1}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: progress.ErrNotEnrolled.Error()}),
		},
		{
			name: "free previews track without enrollment", token: getToken(t, outsider),
			path:     "/v1/progress/lessons/" + preview.ID,
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 30, Played: 0.2}),
			wantCode: http.StatusOK, extra: progress.RecordInput{WatchedSecs: 30, Played: 0.2},
		},
		{
			name: "played beyond the end", token: token,
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 10, Played: 1.5}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "first report", token: token,
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 300, Played: 0.4}),
			wantCode: http.StatusOK, extra: progress.RecordInput{WatchedSecs: 300, Played: 0.4},
		},
		{
			name: "counters only move forward", token: token,
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 120, Played: 0.2}),
			wantCode: http.StatusOK, extra: progress.RecordInput{WatchedSecs: 300, Played: 0.4},
		},
		{
			name: "further report", token: token,
			body:     marchallObj(t, progress.RecordInput{WatchedSecs: 540, Played: 0.75}),
			wantCode: http.StatusOK, extra: progress.RecordInput{WatchedSecs: 540, Played: 0.75},
		},
	}
	for _, tt := range tests {
		if tt.path == "" {
			tt.path = path
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if want, ok := tt.extra.(progress.RecordInput); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var lp progress.LessonProgress
				if err := json.Unmarshal(rec.Body.Bytes(), &lp); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if lp.WatchedSecs != want.WatchedSecs || lp.Played != want.Played {
					t.Errorf("failed! progress = (%d, %v); want (%d, %v)", lp.WatchedSecs, lp.Played, want.WatchedSecs, want.Played)
				}
				if lp.IsCompleted {
					t.Error("failed! partial watch must not complete the lesson")
				}
				return
			}
			if tt.name == "played beyond the end" {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_retrieve(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	lsn := testutil.CreateLesson(t, env.crsRepo, crs, "Routing", 1, 12, true)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)
	token := getToken(t, student)

	// a lesson never watched yields the zero "not started" state, not a 404
	req, rec := newAuthRequest(http.MethodGet, "/v1/progress/lessons/"+lsn.ID, token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var lp progress.LessonProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &lp); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if lp.LessonID != lsn.ID || lp.StudentID != student.ID {
		t.Errorf("failed! unexpected progress: %+v", lp)
	}
	if lp.Started() {
		t.Error("failed! progress should not have started")
	}
}

func Test_progressApi_complete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	first := testutil.CreateLesson(t, env.crsRepo, crs, "Routing", 1, 12, true)
	second := testutil.CreateLesson(t, env.crsRepo, crs, "Middleware", 2, 18, false)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)
	token := getToken(t, student)

	complete := func(t *testing.T, lessonID string) progress.LessonProgress {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress/lessons/"+lessonID+"/complete", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var lp progress.LessonProgress
		if err := json.Unmarshal(rec.Body.Bytes(), &lp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return lp
	}

	t.Run("first lesson done", func(t *testing.T) {
		lp := complete(t, first.ID)
		if !lp.IsCompleted || lp.CompletedAt == nil || lp.Played != 1 {
			t.Errorf("failed! unexpected progress: %+v", lp)
		}

		enr, err := env.enrRepo.GetEnrollment(ctx, crs.ID, student.ID)
		if err != nil {
			t.Fatalf("GetEnrollment(): %v", err)
		}
		if enr.ProgressPct != 50 {
			t.Errorf("failed! progress_pct = %v; want 50", enr.ProgressPct)
		}
		if enr.Completed() {
			t.Error("failed! course should not be completed yet")
		}
	})

	t.Run("completion is one-way", func(t *testing.T) {
		before := complete(t, first.ID)
		again := complete(t, first.ID)
		if !again.IsCompleted || again.CompletedAt == nil {
			t.Fatalf("failed! unexpected progress: %+v", again)
		}
		if !again.CompletedAt.Equal(*before.CompletedAt) {
			t.Errorf("failed! completed_at moved from %v to %v", before.CompletedAt, again.CompletedAt)
		}
	})

	t.Run("last lesson completes the course", func(t *testing.T) {
		complete(t, second.ID)

		enr, err := env.enrRepo.GetEnrollment(ctx, crs.ID, student.ID)
		if err != nil {
			t.Fatalf("GetEnrollment(): %v", err)
		}
		if enr.ProgressPct != 100 {
			t.Errorf("failed! progress_pct = %v; want 100", enr.ProgressPct)
		}
		if !enr.Completed() {
			t.Error("failed! course should be completed")
		}
	})
}

func Test_progressApi_listForCourse(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	first := testutil.CreateLesson(t, env.crsRepo, crs, "Routing", 1, 12, true)
	second := testutil.CreateLesson(t, env.crsRepo, crs, "Middleware", 2, 18, false)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)
	token := getToken(t, student)

	// watch out of order; listing comes back in lesson order
	for _, lessonID := range []string{second.ID, first.ID} {
		body := marchallObj(t, progress.RecordInput{WatchedSecs: 60, Played: 0.1})
		req, rec := newAuthRequest(http.MethodPut, "/v1/progress/lessons/"+lessonID, token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/progress/courses/"+crs.ID, token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var lps []progress.LessonProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &lps); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(lps) != 2 {
		t.Fatalf("failed! len(lps) = %d; want 2", len(lps))
	}
	if lps[0].LessonID != first.ID || lps[1].LessonID != second.ID {
		t.Errorf("failed! unexpected order: [%s, %s]", lps[0].LessonID, lps[1].LessonID)
	}
}
