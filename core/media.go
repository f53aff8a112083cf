package core

import (
	"context"
	"io"
)

// MediaBucket identifies one of the app's object storage buckets.
type MediaBucket string

const (
	MediaBucketVideos     MediaBucket = "videos"     // lesson videos
	MediaBucketThumbnails MediaBucket = "thumbnails" // course thumbnails
	MediaBucketAvatars    MediaBucket = "avatars"    // user avatars
)

func (b MediaBucket) Valid() bool {
	switch b {
	case MediaBucketVideos, MediaBucketThumbnails, MediaBucketAvatars:
		return true
	}
	return false
}

// MediaService is any service that can store uploaded files and serve them
// back by public URL. Uploads are single-shot; there is no chunked or
// resumable path.
type MediaService interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, bucket MediaBucket, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, bucket MediaBucket, key string) error
	PublicURL(bucket MediaBucket, key string) string
}
