package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"farmshop/pkg/platform/sentinel"
)

type object struct {
	contentType string
	data        []byte
}

// MemoryStore keeps objects in process memory. Used in development and tests;
// Handler serves the stored objects under the public URL prefix.
type MemoryStore struct {
	mu        sync.RWMutex
	objects   map[string]object
	publicURL string
}

// NewMemory creates a store whose public URLs start with publicURL
// (for example "/media").
func NewMemory(publicURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]object), publicURL: publicURL}
}

func (s *MemoryStore) Put(_ context.Context, bucket, key, contentType string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}
	s.mu.Lock()
	s.objects[bucket+"/"+key] = object{contentType: contentType, data: data}
	s.mu.Unlock()
	return joinURL(s.publicURL, bucket, key), nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[bucket+"/"+key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.objects, bucket+"/"+key)
	return nil
}

// Get returns a stored object and its content type.
func (s *MemoryStore) Get(bucket, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, "", sentinel.ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Register serves GET <publicURL>/{bucket}/* from memory.
func (s *MemoryStore) Register(r chi.Router) {
	prefix := strings.TrimRight(s.publicURL, "/")
	r.Get(prefix+"/{bucket}/*", func(w http.ResponseWriter, req *http.Request) {
		data, contentType, err := s.Get(chi.URLParam(req, "bucket"), chi.URLParam(req, "*"))
		if err != nil {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = io.Copy(w, bytes.NewReader(data))
	})
}
