package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/i474232898/surfcams/internal/cams"
)

var (
	// ErrNotFound is returned when no cam matches the lookup.
	ErrNotFound = errors.New("cam not found")
)

// categoryEntry is a stored category and the ids of its cams, in order.
type categoryEntry struct {
	category cams.Category
	camIDs   []int64
}

// MemoryStore is a concurrency-safe in-memory cam catalog.
type MemoryStore struct {
	mu sync.RWMutex

	// key: cam id
	cams       map[int64]cams.Cam
	categories []categoryEntry
	nextID     int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cams: make(map[int64]cams.Cam),
	}
}

// ReplaceCatalog swaps the whole catalog. Ids are reassigned.
func (s *MemoryStore) ReplaceCatalog(_ context.Context, categories []cams.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cams = make(map[int64]cams.Cam)
	s.categories = s.categories[:0]

	byURL := make(map[string]int64)
	for i, cat := range categories {
		s.nextID++
		entry := categoryEntry{category: cat}
		entry.category.ID = s.nextID
		entry.category.Order = i
		entry.category.Cams = nil

		linked := make(map[int64]bool)
		for _, c := range cat.Cams {
			id, ok := byURL[c.URL]
			if !ok {
				s.nextID++
				id = s.nextID
				c.ID = id
				s.cams[id] = c
				byURL[c.URL] = id
			}
			// A cam appears at most once per category.
			if linked[id] {
				continue
			}
			linked[id] = true
			entry.camIDs = append(entry.camIDs, id)
		}
		s.categories = append(s.categories, entry)
	}
	return nil
}

// ListCategories returns categories by order with their cams.
func (s *MemoryStore) ListCategories(_ context.Context) ([]cams.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cams.Category, 0, len(s.categories))
	for _, e := range s.categories {
		cat := e.category
		cat.Cams = make([]cams.Cam, 0, len(e.camIDs))
		for _, id := range e.camIDs {
			cat.Cams = append(cat.Cams, s.cams[id])
		}
		out = append(out, cat)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ListCams returns every cam by id.
func (s *MemoryStore) ListCams(_ context.Context) ([]cams.Cam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cams.Cam, 0, len(s.cams))
	for _, c := range s.cams {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCam returns the cam with the given id.
func (s *MemoryStore) GetCam(_ context.Context, id int64) (cams.Cam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cams[id]
	if !ok {
		return cams.Cam{}, ErrNotFound
	}
	return c, nil
}

// GetCamBySlug returns the cam with the given slug.
func (s *MemoryStore) GetCamBySlug(_ context.Context, slug string) (cams.Cam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cams {
		if c.Slug == slug {
			return c, nil
		}
	}
	return cams.Cam{}, ErrNotFound
}

// UpdateOfflineSince stores OfflineSince for the given cams; unknown ids
// are ignored.
func (s *MemoryStore) UpdateOfflineSince(_ context.Context, list []cams.Cam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range list {
		stored, ok := s.cams[c.ID]
		if !ok {
			continue
		}
		stored.OfflineSince = c.OfflineSince
		s.cams[c.ID] = stored
	}
	return nil
}
