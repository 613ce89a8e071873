// Package memory provides in-memory implementations of the persistence
// interfaces. They are used as test doubles and for running the server
// without a database. All stores are safe for concurrent use; mutations
// happen under a per-store mutex, which gives the same per-key
// linearizability the Postgres upserts provide.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
)

type progressKey struct {
	userID   progress.UserID
	lessonID progress.LessonID
}

type progressEntry struct {
	record *progress.Record
	seq    uint64 // insertion order, stands in for created_at ordering
}

// ProgressStore is an in-memory progress.Repository.
type ProgressStore struct {
	mu      sync.Mutex
	records map[progressKey]*progressEntry
	nextSeq uint64
	now     func() time.Time
}

// NewProgressStore creates an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[progressKey]*progressEntry),
		now:     time.Now,
	}
}

// Save implements progress.Repository.
func (s *ProgressStore) Save(ctx context.Context, attempt progress.Attempt) (*progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{userID: attempt.UserID, lessonID: attempt.LessonID}
	now := s.now()

	entry, ok := s.records[key]
	if !ok {
		entry = &progressEntry{
			record: progress.NewRecord(attempt, now),
			seq:    s.nextSeq,
		}
		s.nextSeq++
		s.records[key] = entry
	} else {
		entry.record.Apply(attempt, now)
	}

	return entry.record.Clone(), nil
}

// Get implements progress.Repository.
func (s *ProgressStore) Get(ctx context.Context, userID progress.UserID, lessonID progress.LessonID) (*progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.records[progressKey{userID: userID, lessonID: lessonID}]
	if !ok {
		return nil, progress.ErrRecordNotFound
	}
	return entry.record.Clone(), nil
}

// ListByUser implements progress.Repository.
func (s *ProgressStore) ListByUser(ctx context.Context, userID progress.UserID) ([]*progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type ordered struct {
		record *progress.Record
		seq    uint64
	}
	matches := make([]ordered, 0)
	for key, entry := range s.records {
		if key.userID == userID {
			matches = append(matches, ordered{record: entry.record.Clone(), seq: entry.seq})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].seq < matches[j].seq
	})

	records := make([]*progress.Record, 0, len(matches))
	for _, m := range matches {
		records = append(records, m.record)
	}
	return records, nil
}

// Delete implements progress.Repository.
func (s *ProgressStore) Delete(ctx context.Context, userID progress.UserID, lessonID progress.LessonID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{userID: userID, lessonID: lessonID}
	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}
