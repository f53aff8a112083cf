package mediasvc

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/darisacademy/daris/core"
)

// dummyService keeps uploads in memory; for local runs and tests.
type dummyService struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ core.MediaService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{objects: make(map[string][]byte)}
}

func (svc *dummyService) Upload(ctx context.Context, bucket core.MediaBucket, key string, r io.Reader, contentType string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	svc.mu.Lock()
	svc.objects[string(bucket)+"/"+key] = content
	svc.mu.Unlock()
	return svc.PublicURL(bucket, key), nil
}

func (svc *dummyService) Delete(ctx context.Context, bucket core.MediaBucket, key string) error {
	svc.mu.Lock()
	delete(svc.objects, string(bucket)+"/"+key)
	svc.mu.Unlock()
	return nil
}

func (svc *dummyService) PublicURL(bucket core.MediaBucket, key string) string {
	return fmt.Sprintf("https://media.local/%s/%s", bucket, key)
}

// Object returns a stored object's content; for test assertions.
func (svc *dummyService) Object(bucket core.MediaBucket, key string) ([]byte, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	content, ok := svc.objects[string(bucket)+"/"+key]
	return content, ok
}
