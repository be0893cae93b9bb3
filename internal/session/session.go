// Package session keeps each browser's uploaded files and latest results in
// memory. Nothing is persisted: sessions expire after a TTL and the least
// recently used session is evicted when the store is full.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/metrics"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoResult is returned when a session has no result for a target.
	ErrNoResult = errors.New("no analysis results")
)

// File is one uploaded file: its dataset, or the load error it produced.
type File struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Size       int64             `json:"size"`
	UploadedAt time.Time         `json:"uploadedAt"`
	Dataset    *core.Dataset     `json:"-"`
	Err        error             `json:"-"`
	Settings   core.FileSettings `json:"settings"`
}

// Loaded reports whether the file produced a dataset.
func (f *File) Loaded() bool {
	return f.Err == nil && f.Dataset != nil
}

// Session holds one browser's state. Methods are safe for concurrent use.
type Session struct {
	ID string

	mu        sync.RWMutex
	files     []*File
	common    *core.CommonFilter
	result    *core.BatchResult
	updatedAt time.Time
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), updatedAt: time.Now()}
}

// AddFile appends an uploaded file with default settings and a new id.
func (s *Session) AddFile(name string, size int64, ds *core.Dataset, loadErr error) *File {
	f := &File{
		ID:         uuid.NewString(),
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
		Dataset:    ds,
		Err:        loadErr,
		Settings:   core.DefaultFileSettings(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, f)
	s.result = nil
	s.updatedAt = time.Now()
	return f
}

// Files returns the uploaded files in upload order.
func (s *Session) Files() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*File(nil), s.files...)
}

// File returns the file with the given id.
func (s *Session) File(id string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, core.ErrFileNotFound
}

// SetSettings replaces the settings of one file.
func (s *Session) SetSettings(id string, settings core.FileSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.ID == id {
			f.Settings = settings
			s.updatedAt = time.Now()
			return nil
		}
	}
	return core.ErrFileNotFound
}

// SetCommon sets the filter applied to every file; nil disables it.
func (s *Session) SetCommon(common *core.CommonFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.common = common
	s.updatedAt = time.Now()
}

// Common returns the common filter, or nil when per-file filters apply.
func (s *Session) Common() *core.CommonFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.common
}

// Inputs returns the recompute inputs for the uploaded files, in order.
func (s *Session) Inputs() []core.FileInput {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inputs := make([]core.FileInput, 0, len(s.files))
	for _, f := range s.files {
		inputs = append(inputs, core.FileInput{
			Name:     f.Name,
			Dataset:  f.Dataset,
			Err:      f.Err,
			Settings: f.Settings,
		})
	}
	return inputs
}

// SetResult stores the latest recompute result.
func (s *Session) SetResult(r core.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &r
	s.updatedAt = time.Now()
}

// Result returns the latest recompute result, if any.
func (s *Session) Result() (core.BatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return core.BatchResult{}, false
	}
	return *s.result, true
}

// Table returns one table of the latest result: core.MergedTarget or a
// file position.
func (s *Session) Table(target string) (core.ResultTable, error) {
	r, ok := s.Result()
	if !ok {
		return nil, ErrNoResult
	}
	t, ok := r.Table(target)
	if !ok {
		return nil, fmt.Errorf("%w: target %q", ErrNoResult, target)
	}
	return t, nil
}

// Reset removes every file and result and returns the removed files.
func (s *Session) Reset() []*File {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.files
	s.files = nil
	s.common = nil
	s.result = nil
	s.updatedAt = time.Now()
	return removed
}

// UpdatedAt returns the time of the last change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Store is a bounded, expiring set of sessions.
type Store struct {
	cache *expirable.LRU[string, *Session]
}

// NewStore creates a store holding at most size sessions, each expiring ttl
// after its last use. onEvict, if set, sees every session that leaves the
// store, whether expired, evicted or deleted.
func NewStore(size int, ttl time.Duration, onEvict func(*Session)) *Store {
	var cb expirable.EvictCallback[string, *Session]
	if onEvict != nil {
		cb = func(_ string, s *Session) { onEvict(s) }
	}
	return &Store{cache: expirable.NewLRU[string, *Session](size, cb, ttl)}
}

// Create starts a new, empty session.
func (st *Store) Create() *Session {
	s := newSession()
	st.cache.Add(s.ID, s)
	metrics.SetActiveSessions(st.cache.Len())
	return s
}

// Get returns a live session and renews its expiry.
func (st *Store) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st.cache.Add(id, s)
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created reports whether a new session was started.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if s, err := st.Get(id); err == nil {
		return s, false
	}
	return st.Create(), true
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.cache.Remove(id)
	metrics.SetActiveSessions(st.cache.Len())
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}
