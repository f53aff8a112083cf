package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/user"
	testutil "github.com/darisacademy/daris/tests"
)

// fetchCourse reloads a course so expectations carry refreshed counters and
// the joined teacher name.
func fetchCourse(t *testing.T, env *testEnv, id string) course.Course {
	t.Helper()
	crs, err := env.crsRepo.GetCourseByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCourseByID(): %v", err)
	}
	return crs
}

func Test_courseApi_search(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	goCrs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	pyCrs := testutil.CreateCourse(t, env.crsRepo, teacher, "أساسيات البرمجة بلغة Python", course.StatusPublished, 1500)
	testutil.CreateCourse(t, env.crsRepo, teacher, "Hidden Draft", course.StatusDraft, 0)
	testutil.CreateCourse(t, env.crsRepo, teacher, "Gone", course.StatusArchived, 0)

	goCrs, pyCrs = fetchCourse(t, env, goCrs.ID), fetchCourse(t, env, pyCrs.ID)

	tests := []httpTest{
		{name: "published only", path: "/v1/courses", wantData: marchallList(t, goCrs, pyCrs)},
		{name: "search matches arabic titles", path: "/v1/courses?search=" + "البرمجة", wantData: marchallList(t, pyCrs)},
		{name: "search (unknown)", path: "/v1/courses?search=lol", wantData: marchallList(t, []interface{}{}...)},
		{name: "is_free=true", path: "/v1/courses?is_free=true", wantData: marchallList(t, goCrs)},
		{name: "status filter cannot leak drafts", path: "/v1/courses?status=draft", wantData: marchallList(t, goCrs, pyCrs)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, env.crsRepo, teacher, "Web Development with Go", course.StatusPublished, 0)
	testutil.CreateLesson(t, env.crsRepo, crs, "Routing", 1, 12, true)
	testutil.CreateLesson(t, env.crsRepo, crs, "Middleware", 2, 18, false)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/"+crs.ID)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var got course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if got.TeacherName != teacher.Name {
			t.Errorf("failed! teacher_name = %q; want %q", got.TeacherName, teacher.Name)
		}
		if got.TotalLessons != 2 || got.DurationMins != 30 {
			t.Errorf("failed! counters = (%d, %d); want (2, 30)", got.TotalLessons, got.DurationMins)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()})}
		req, rec := newRequest(http.MethodGet, "/v1/courses/lol")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("lessons ordered by order_index", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/lessons")
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var lessons []course.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lessons); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(lessons) != 2 {
			t.Fatalf("failed! len(lessons) = %d; want 2", len(lessons))
		}
		if lessons[0].Title != "Routing" || lessons[1].Title != "Middleware" {
			t.Errorf("failed! order = [%s, %s]", lessons[0].Title, lessons[1].Title)
		}
	})
}

func Test_courseApi_lessonVideoVisibility(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	outsider := testutil.CreateUser(t, env.usrRepo, "Outsider", "outsider@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusPublished, 0)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)

	mkLesson := func(title string, orderIdx int, isFree bool) course.Lesson {
		lsn, err := env.crsRepo.CreateLesson(ctx, course.Lesson{
			CourseID:   crs.ID,
			Title:      title,
			OrderIndex: orderIdx,
			VideoURL:   "https://media.local/videos/" + title + ".mp4",
			IsFree:     isFree,
		})
		if err != nil {
			t.Fatalf("CreateLesson(): %v", err)
		}
		return lsn
	}
	preview := mkLesson("intro", 1, true)
	paid := mkLesson("deep-dive", 2, false)

	getLessons := func(t *testing.T, token string) map[string]string {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/lessons", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var lessons []course.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lessons); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		urls := make(map[string]string, len(lessons))
		for _, lsn := range lessons {
			urls[lsn.ID] = lsn.VideoURL
		}
		return urls
	}

	t.Run("anonymous sees free previews only", func(t *testing.T) {
		urls := getLessons(t, "")
		if urls[preview.ID] != preview.VideoURL {
			t.Errorf("failed! preview url = %q; want %q", urls[preview.ID], preview.VideoURL)
		}
		if urls[paid.ID] != "" {
			t.Errorf("failed! paid url = %q; want hidden", urls[paid.ID])
		}
	})

	t.Run("non-enrolled student sees free previews only", func(t *testing.T) {
		urls := getLessons(t, getToken(t, outsider))
		if urls[paid.ID] != "" {
			t.Errorf("failed! paid url = %q; want hidden", urls[paid.ID])
		}
	})

	t.Run("enrolled student sees everything", func(t *testing.T) {
		urls := getLessons(t, getToken(t, student))
		if urls[paid.ID] != paid.VideoURL {
			t.Errorf("failed! paid url = %q; want %q", urls[paid.ID], paid.VideoURL)
		}
	})

	t.Run("owner sees everything", func(t *testing.T) {
		urls := getLessons(t, getToken(t, owner))
		if urls[paid.ID] != paid.VideoURL {
			t.Errorf("failed! paid url = %q; want %q", urls[paid.ID], paid.VideoURL)
		}
	})
}

func Test_courseApi_create(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, course.NewCourse{Title: "Hax", Category: "hax", Level: course.LevelBeginner, IsFree: true}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: getToken(t, teacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": reqMsg, "category": reqMsg, "level": reqMsg}),
		},
		{
			name: "a priced course requires a price", token: getToken(t, teacher), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, course.NewCourse{Title: "Go", Category: "programming", Level: course.LevelBeginner}),
			wantData: marchallObj(t, map[string]string{"price_cents": "a priced course requires a price"}),
		},
		{
			name: "created as draft", token: getToken(t, teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, course.NewCourse{Title: "Go", Category: "Programming", Level: course.LevelBeginner, PriceCents: 2500}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.name == "created as draft" {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var crs course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if crs.Status != course.StatusDraft {
					t.Errorf("failed! status = %s; want %s", crs.Status, course.StatusDraft)
				}
				if crs.TeacherID != teacher.ID {
					t.Errorf("failed! teacher_id = %s; want %s", crs.TeacherID, teacher.ID)
				}
				if crs.Category != "programming" { // lowered
					t.Errorf("failed! category = %s; want programming", crs.Category)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_update(t *testing.T) {
	env := setup(t)

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	rival := testutil.CreateUser(t, env.usrRepo, "Rival", "rival@test.cd", "", user.RoleTeacher, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	crs := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusDraft, 0)

	tests := []httpTest{
		{
			name: "another teacher cannot edit", token: getToken(t, rival), wantCode: http.StatusForbidden,
			body:     marchallObj(t, course.UpdateCourse{Title: "Hax"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "owner edits", token: getToken(t, owner), wantCode: http.StatusOK,
			body: marchallObj(t, course.UpdateCourse{Title: "Advanced Web Development with Go", Level: course.LevelAdvanced}), extra: "Advanced Web Development with Go",
		},
		{
			name: "admin edits any course", token: getToken(t, admin), wantCode: http.StatusOK,
			body: marchallObj(t, course.UpdateCourse{Description: "Now reviewed."}), extra: "Advanced Web Development with Go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if wantTitle, ok := tt.extra.(string); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var got course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if got.Title != wantTitle {
					t.Errorf("failed! title = %q; want %q", got.Title, wantTitle)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_setStatus(t *testing.T) {
	env := setup(t)

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	rival := testutil.CreateUser(t, env.usrRepo, "Rival", "rival@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusDraft, 0)

	transitionErr := marchallObj(t, map[string]string{"status": course.ErrInvalidTransition.Error()})
	tests := []httpTest{
		{
			name: "unknown status", token: getToken(t, owner), wantCode: http.StatusBadRequest,
			body: marchallObj(t, SetStatusRequest{Status: "lol"}),
		},
		{
			name: "another teacher cannot publish", token: getToken(t, rival), wantCode: http.StatusForbidden,
			body:     marchallObj(t, SetStatusRequest{Status: course.StatusPublished}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "draft to draft rejected", token: getToken(t, owner), wantCode: http.StatusBadRequest,
			body: marchallObj(t, SetStatusRequest{Status: course.StatusDraft}), wantData: transitionErr,
		},
		{
			name: "draft to published", token: getToken(t, owner), wantCode: http.StatusOK,
			body: marchallObj(t, SetStatusRequest{Status: course.StatusPublished}), extra: course.StatusPublished,
		},
		{
			name: "published back to draft rejected", token: getToken(t, owner), wantCode: http.StatusBadRequest,
			body: marchallObj(t, SetStatusRequest{Status: course.StatusDraft}), wantData: transitionErr,
		},
		{
			name: "published to archived", token: getToken(t, owner), wantCode: http.StatusOK,
			body: marchallObj(t, SetStatusRequest{Status: course.StatusArchived}), extra: course.StatusArchived,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/status", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if wantStatus, ok := tt.extra.(course.Status); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var got course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if got.Status != wantStatus {
					t.Errorf("failed! status = %s; want %s", got.Status, wantStatus)
				}
				return
			}
			if tt.name == "unknown status" {
				// translated message depends on the validator; code check suffices
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_lessons(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusDraft, 0)
	other := testutil.CreateCourse(t, env.crsRepo, owner, "Another Course", course.StatusDraft, 0)
	strayLsn := testutil.CreateLesson(t, env.crsRepo, other, "Stray", 1, 5, false)
	token := getToken(t, owner)

	var first, second course.Lesson

	t.Run("add first lesson", func(t *testing.T) {
		body := marchallObj(t, course.NewLesson{Title: "Routing", DurationMins: 12, IsFree: true})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/lessons", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if first.OrderIndex != 0 {
			t.Errorf("failed! order_index = %d; want 0", first.OrderIndex)
		}
	})

	t.Run("add second lesson appends", func(t *testing.T) {
		body := marchallObj(t, course.NewLesson{Title: "Middleware", DurationMins: 18})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/lessons", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if second.OrderIndex != first.OrderIndex+1 {
			t.Errorf("failed! order_index = %d; want %d", second.OrderIndex, first.OrderIndex+1)
		}

		refreshed := fetchCourse(t, env, crs.ID)
		if refreshed.TotalLessons != 2 || refreshed.DurationMins != 30 {
			t.Errorf("failed! counters = (%d, %d); want (2, 30)", refreshed.TotalLessons, refreshed.DurationMins)
		}
	})

	t.Run("update lesson", func(t *testing.T) {
		body := marchallObj(t, course.UpdateLesson{Title: "Echo Middleware"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/lessons/"+second.ID, token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var got course.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if got.Title != "Echo Middleware" {
			t.Errorf("failed! title = %q", got.Title)
		}
	})

	t.Run("lesson of another course is not reachable", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: course.ErrLessonNotFound.Error()}),
		}
		body := marchallObj(t, course.UpdateLesson{Title: "Hax"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/lessons/"+strayLsn.ID, token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("reorder must list every lesson", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"lesson_ids": "must list every lesson of the course exactly once"}),
		}
		body := marchallObj(t, ReorderLessonsRequest{LessonIDs: []string{first.ID}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/lessons/reorder", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("reorder rejects foreign lessons", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: course.ErrLessonCourseMismatch.Error()}),
		}
		body := marchallObj(t, ReorderLessonsRequest{LessonIDs: []string{first.ID, strayLsn.ID}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/lessons/reorder", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("reorder", func(t *testing.T) {
		body := marchallObj(t, ReorderLessonsRequest{LessonIDs: []string{second.ID, first.ID}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/lessons/reorder", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var lessons []course.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lessons); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(lessons) != 2 || lessons[0].ID != second.ID || lessons[1].ID != first.ID {
			t.Errorf("failed! unexpected lesson order: %+v", lessons)
		}
	})

	t.Run("delete lesson refreshes counters", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+crs.ID+"/lessons/"+first.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
		refreshed := fetchCourse(t, env, crs.ID)
		if refreshed.TotalLessons != 1 || refreshed.DurationMins != 18 {
			t.Errorf("failed! counters = (%d, %d); want (1, 18)", refreshed.TotalLessons, refreshed.DurationMins)
		}
		if _, err := env.crsRepo.GetLessonByID(ctx, first.ID); err != course.ErrLessonNotFound {
			t.Errorf("GetLessonByID() error = %v; want %v", err, course.ErrLessonNotFound)
		}
	})
}

func Test_courseApi_query(t *testing.T) {
	env := setup(t)

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	rival := testutil.CreateUser(t, env.usrRepo, "Rival", "rival@test.cd", "", user.RoleTeacher, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)

	draft := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusDraft, 0)
	rivalCrs := testutil.CreateCourse(t, env.crsRepo, rival, "Competing Course", course.StatusPublished, 0)
	draft, rivalCrs = fetchCourse(t, env, draft.ID), fetchCourse(t, env, rivalCrs.ID)

	tests := []httpTest{
		{
			name: "students have no backstage", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "teachers see own courses only", token: getToken(t, owner), wantCode: http.StatusOK, wantData: marchallList(t, draft)},
		{name: "admins see everything", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, draft, rivalCrs)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/courses/all", tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_enrollments(t *testing.T) {
	env := setup(t)

	owner := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	rival := testutil.CreateUser(t, env.usrRepo, "Rival", "rival@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, env.crsRepo, owner, "Web Development with Go", course.StatusPublished, 0)
	testutil.CreateEnrollment(t, env.enrRepo, crs, student)

	t.Run("another teacher cannot peek", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/enrollments", getToken(t, rival))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner lists enrollments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/enrollments", getToken(t, owner))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var enrs []struct {
			StudentID   string `json:"student_id"`
			StudentName string `json:"student_name"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &enrs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(enrs) != 1 || enrs[0].StudentID != student.ID {
			t.Fatalf("failed! unexpected enrollments: %+v", enrs)
		}
	})
}
