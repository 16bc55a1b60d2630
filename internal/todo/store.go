package todo

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/cwarden/wkcal/internal/week"
)

// Store is the CRUD layer over a Backend. Every operation reads the backend
// afresh, mutates in memory and saves the whole map before returning. A
// mutex held across that cycle serializes operations inside the process, so
// no two of them can work on stale copies.
type Store struct {
	backend Backend
	logger  *log.Logger
	mu      sync.Mutex
}

// NewStore creates a store. A nil logger discards.
func NewStore(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{backend: backend, logger: logger}
}

// Location describes where the data lives.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load returns the full map. Missing or undecodable data yields an empty map
// so the calendar always renders; only *IOError is returned.
func (s *Store) Load(ctx context.Context) (ScopeMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (ScopeMap, error) {
	m, err := s.backend.Load(ctx)
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		s.logger.Warn("ignoring unreadable todo data", "path", malformed.Path, "err", malformed.Err)
		return make(ScopeMap), nil
	}
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = make(ScopeMap)
	}
	return m, nil
}

// Save replaces the persisted map.
func (s *Store) Save(ctx context.Context, m ScopeMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, m)
}

// mutate runs fn on a freshly loaded map and saves it when fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func(ScopeMap) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	if !fn(m) {
		return nil
	}
	if err := s.backend.Save(ctx, m); err != nil {
		return err
	}
	s.logger.Debug("saved todo data", "path", s.backend.Location())
	return nil
}

// Days returns a copy of the buckets of scope.
func (s *Store) Days(ctx context.Context, scope string) (Days, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return m[scope].Clone(), nil
}

// Scopes lists the scope keys that have data.
func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Scopes(), nil
}

// AddTodo appends a task with the trimmed text to scope/day. Blank text is
// ignored: the returned task is nil and nothing is saved.
func (s *Store) AddTodo(ctx context.Context, scope, day, text string) (*Task, error) {
	task, ok := NewTask(text)
	if !ok {
		return nil, nil
	}
	day = week.NormalizeKey(day)

	err := s.mutate(ctx, func(m ScopeMap) bool {
		days := m.ensure(scope)
		days[day] = append(days[day], task)
		return true
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("added task", "scope", scope, "day", day, "id", task.ID)
	return &task, nil
}

// RemoveTodo removes every task in scope/day whose text equals text and
// returns how many were removed.
func (s *Store) RemoveTodo(ctx context.Context, scope, day, text string) (int, error) {
	return s.removeWhere(ctx, scope, day, func(t Task) bool { return t.Text == text })
}

// RemoveByID removes the task with the given id from scope/day.
func (s *Store) RemoveByID(ctx context.Context, scope, day, id string) (bool, error) {
	n, err := s.removeWhere(ctx, scope, day, func(t Task) bool { return t.ID == id })
	return n > 0, err
}

func (s *Store) removeWhere(ctx context.Context, scope, day string, match func(Task) bool) (int, error) {
	day = week.NormalizeKey(day)
	removed := 0
	err := s.mutate(ctx, func(m ScopeMap) bool {
		bucket, ok := m[scope][day]
		if !ok {
			return false
		}
		kept := make(Bucket, 0, len(bucket))
		for _, t := range bucket {
			if match(t) {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		m[scope][day] = kept
		return removed > 0
	})
	return removed, err
}

// ToggleCompleted flips the completed flag of the first task in scope/day
// whose text equals text.
func (s *Store) ToggleCompleted(ctx context.Context, scope, day, text string) (bool, error) {
	return s.toggleFirst(ctx, scope, day, func(t Task) bool { return t.Text == text })
}

// ToggleByID flips the completed flag of the task with the given id.
func (s *Store) ToggleByID(ctx context.Context, scope, day, id string) (bool, error) {
	return s.toggleFirst(ctx, scope, day, func(t Task) bool { return t.ID == id })
}

func (s *Store) toggleFirst(ctx context.Context, scope, day string, match func(Task) bool) (bool, error) {
	day = week.NormalizeKey(day)
	found := false
	err := s.mutate(ctx, func(m ScopeMap) bool {
		bucket := m[scope][day]
		for i := range bucket {
			if match(bucket[i]) {
				bucket[i].Completed = !bucket[i].Completed
				found = true
				return true
			}
		}
		return false
	})
	return found, err
}

// ClearCompleted removes completed tasks from every day of scope. Days this
// call empties are dropped, and so is the scope when no days remain. Days
// that were already empty are left alone.
func (s *Store) ClearCompleted(ctx context.Context, scope string) (int, error) {
	removed := 0
	err := s.mutate(ctx, func(m ScopeMap) bool {
		days, ok := m[scope]
		if !ok {
			return false
		}
		for day, bucket := range days {
			kept := make(Bucket, 0, len(bucket))
			for _, t := range bucket {
				if t.Completed {
					continue
				}
				kept = append(kept, t)
			}
			removedHere := len(bucket) - len(kept)
			if removedHere == 0 {
				continue
			}
			removed += removedHere
			if len(kept) == 0 {
				delete(days, day)
				continue
			}
			days[day] = kept
		}
		if removed > 0 && len(days) == 0 {
			delete(m, scope)
		}
		return removed > 0
	})
	return removed, err
}
