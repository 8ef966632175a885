package pipeline

import (
	"context"
	"errors"
	"sync"

	"i4e-backend/internal/domain/career"
)

// fakeStore behaves like the upsert-by-name reference tables.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[career.EntityKind]map[string]int64
	parents map[int64]*int64
	creates int
	fail    map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:    make(map[career.EntityKind]map[string]int64),
		parents: make(map[int64]*int64),
		fail:    make(map[string]error),
	}
}

func (s *fakeStore) CreateByName(ctx context.Context, kind career.EntityKind, name string, parentID *int64, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if err, ok := s.fail[name]; ok {
		return 0, err
	}
	byName := s.rows[kind]
	if byName == nil {
		byName = make(map[string]int64)
		s.rows[kind] = byName
	}
	if id, ok := byName[name]; ok {
		return id, nil
	}
	s.nextID++
	byName[name] = s.nextID
	s.parents[s.nextID] = parentID
	return s.nextID, nil
}

func (s *fakeStore) count(kind career.EntityKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[kind])
}

func (s *fakeStore) id(kind career.EntityKind, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[kind][name]
}

type fakeSink struct {
	mu      sync.Mutex
	nextID  int64
	created []career.Details
	failOn  string
}

var errSinkDown = errors.New("document store unavailable")

func (s *fakeSink) CreateCareer(ctx context.Context, d career.Details, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && d.CareerName == s.failOn {
		return 0, errSinkDown
	}
	s.nextID++
	s.created = append(s.created, d)
	return 1000 + s.nextID, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (n *recordingNotifier) Notify(ev ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type stubThumbs map[string]string

func (s stubThumbs) Thumbnail(ctx context.Context, link string) (string, error) {
	if img, ok := s[link]; ok {
		return img, nil
	}
	return "", errors.New("no og:image")
}
