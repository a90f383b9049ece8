// Package mock provides an in-memory objectstore.Store for tests.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/acousticlabs/trainyard/internal/objectstore"
)

// Store keeps objects in a map. Method hooks override the in-memory
// behavior when set.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte

	ListFunc         func(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error)
	CountFunc        func(ctx context.Context, prefix string) (int, error)
	ListPrefixesFunc func(ctx context.Context, prefix string) ([]string, error)
	ExistsFunc       func(ctx context.Context, key string) (bool, error)
	DeleteFunc       func(ctx context.Context, key string) error
	DeletePrefixFunc func(ctx context.Context, prefix string) (int, error)
	PresignFunc      func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Put seeds an object directly.
func (s *Store) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = value
}

func (s *Store) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	if s.ListFunc != nil {
		return s.ListFunc(ctx, prefix)
	}
	var infos []objectstore.ObjectInfo
	for _, k := range s.keys() {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, objectstore.ObjectInfo{Key: k})
		}
	}
	return infos, nil
}

func (s *Store) Count(ctx context.Context, prefix string) (int, error) {
	if s.CountFunc != nil {
		return s.CountFunc(ctx, prefix)
	}
	infos, err := s.List(ctx, prefix)
	return len(infos), err
}

func (s *Store) ListPrefixes(ctx context.Context, prefix string) ([]string, error) {
	if s.ListPrefixesFunc != nil {
		return s.ListPrefixesFunc(ctx, prefix)
	}
	seen := make(map[string]bool)
	var names []string
	for _, k := range s.keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if i := strings.Index(rest, "/"); i > 0 && !seen[rest[:i]] {
			seen[rest[:i]] = true
			names = append(names, rest[:i])
		}
	}
	return names, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if s.ExistsFunc != nil {
		return s.ExistsFunc(ctx, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if s.DeletePrefixFunc != nil {
		return s.DeletePrefixFunc(ctx, prefix)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.objects, k)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.PresignFunc != nil {
		return s.PresignFunc(ctx, key, ttl)
	}
	return "https://signed.example.com/" + key, nil
}

// Compile-time check that Store implements objectstore.Store.
var _ objectstore.Store = (*Store)(nil)
