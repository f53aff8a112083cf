package echoapi

import (
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/user"
)

type mediaApi struct {
	svc     core.MediaService
	userSvc user.ServiceInterface
}

func registerMediaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc core.MediaService, userSvc user.ServiceInterface) {
	api := mediaApi{
		svc:     svc,
		userSvc: userSvc,
	}

	mg := g.Group("/media", jwt)
	mg.POST("/:bucket", api.upload)
	mg.DELETE("/:bucket/:key", api.destroy, teacherMiddleware())
}

// Handlers

// upload stores a multipart file and returns its public URL. Lesson videos
// and course thumbnails are teacher material; avatars are open to any
// authenticated user.
func (api *mediaApi) upload(ctx echo.Context) error {
	bucket := core.MediaBucket(ctx.Param("bucket"))
	if !bucket.Valid() {
		return errHttpNotFound
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if bucket != core.MediaBucketAvatars && !(ctxUsr.IsTeacher() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a `file` form field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	key := uuid.NewString() + filepath.Ext(fh.Filename)
	url, err := api.svc.Upload(ctx.Request().Context(), bucket, key, f, fh.Header.Get("Content-Type"))
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{Key: key, URL: url})
}

func (api *mediaApi) destroy(ctx echo.Context) error {
	bucket := core.MediaBucket(ctx.Param("bucket"))
	if !bucket.Valid() {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), bucket, ctx.Param("key")); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
