package mediasvc

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/darisacademy/daris/core"
)

const uploadTimeout = 2 * time.Minute

type gcsService struct {
	client *storage.Client
	conf   core.MediaConfig
	logger core.Logger
}

var _ core.MediaService = (*gcsService)(nil)

func NewGCSService(ctx context.Context, conf core.MediaConfig, logger core.Logger) (*gcsService, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}
	return &gcsService{client: client, conf: conf, logger: logger}, nil
}

func (svc *gcsService) bucketName(bucket core.MediaBucket) string {
	switch bucket {
	case core.MediaBucketVideos:
		return svc.conf.VideoBucket
	case core.MediaBucketThumbnails:
		return svc.conf.ThumbnailBucket
	case core.MediaBucketAvatars:
		return svc.conf.AvatarBucket
	}
	return ""
}

func (svc *gcsService) Upload(ctx context.Context, bucket core.MediaBucket, key string, r io.Reader, contentType string) (string, error) {
	name := svc.bucketName(bucket)
	if name == "" {
		return "", errors.Errorf("unknown media bucket: %s", bucket)
	}
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := svc.client.Bucket(name).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing object writer")
	}
	return svc.PublicURL(bucket, key), nil
}

func (svc *gcsService) Delete(ctx context.Context, bucket core.MediaBucket, key string) error {
	name := svc.bucketName(bucket)
	if name == "" {
		return errors.Errorf("unknown media bucket: %s", bucket)
	}
	if err := svc.client.Bucket(name).Object(key).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return errors.Wrap(err, "deleting object")
	}
	return nil
}

func (svc *gcsService) PublicURL(bucket core.MediaBucket, key string) string {
	name := svc.bucketName(bucket)
	if svc.conf.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", svc.conf.PublicBaseURL, name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", name, key)
}
