package media

import (
	"context"
	"path"
	"sync"

	"github.com/google/uuid"

	app "github.com/oksasatya/go-ddd-social/internal/application"
)

// MemoryStore is an in-process MediaStore used with the memory driver and in tests.
type MemoryStore struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]app.ImageUpload
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStore{BaseURL: baseURL, objects: map[string]app.ImageUpload{}}
}

var _ app.MediaStore = (*MemoryStore)(nil)

func (s *MemoryStore) Upload(_ context.Context, folder string, img app.ImageUpload) (string, error) {
	url := s.BaseURL + "/" + path.Join(folder, uuid.NewString()+extFor(img))
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	img.Data = data

	s.mu.Lock()
	s.objects[url] = img
	s.mu.Unlock()
	return url, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	delete(s.objects, url)
	s.mu.Unlock()
	return nil
}

// Has reports whether url is currently stored.
func (s *MemoryStore) Has(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[url]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
