package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/user"
	testutil "github.com/darisacademy/daris/tests"
)

func newUploadRequest(t *testing.T, path, token, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile(): %v", err)
	}
	if _, err = fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_mediaApi_upload(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Amina Diallo", "amina@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)

	t.Run("unknown bucket", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		req, rec := newUploadRequest(t, "/v1/media/lol", getToken(t, teacher), "clip.mp4", "vid")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("students cannot upload videos", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newUploadRequest(t, "/v1/media/videos", getToken(t, student), "clip.mp4", "vid")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("file field required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "a `file` form field is required"})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/media/avatars", getToken(t, student))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student uploads an avatar", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/media/avatars", getToken(t, student), "me.png", "fake png bytes")
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		var resp UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if !strings.HasSuffix(resp.Key, ".png") {
			t.Errorf("failed! key = %q; want .png extension kept", resp.Key)
		}
		if !strings.Contains(resp.URL, string(core.MediaBucketAvatars)) {
			t.Errorf("failed! url = %q", resp.URL)
		}

		content, ok := env.media.Object(core.MediaBucketAvatars, resp.Key)
		if !ok {
			t.Fatal("failed! object not stored")
		}
		if string(content) != "fake png bytes" {
			t.Errorf("failed! stored content = %q", content)
		}
	})

	t.Run("teacher uploads a video", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/media/videos", getToken(t, teacher), "lesson-01.mp4", "vid")
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		var resp UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if _, ok := env.media.Object(core.MediaBucketVideos, resp.Key); !ok {
			t.Fatal("failed! object not stored")
		}

		t.Run("and deletes it", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, "/v1/media/videos/"+resp.Key, getToken(t, teacher))
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
			}
			if _, ok := env.media.Object(core.MediaBucketVideos, resp.Key); ok {
				t.Error("failed! object still stored")
			}
		})
	})

	t.Run("students cannot delete media", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newAuthRequest(http.MethodDelete, "/v1/media/videos/lol.mp4", getToken(t, student))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
