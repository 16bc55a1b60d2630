// Package todo keeps the per-scope, per-day task lists and persists them.
package todo

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Task is a single to-do item attached to a day.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTask builds a task from user input. It reports false when the text is
// blank after trimming.
func NewTask(text string) (Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}
	return Task{ID: newID(), Text: text}, true
}

func newID() string {
	return uuid.NewString()
}

// Bucket is the ordered task list of one day. Insertion order is display order.
type Bucket []Task

// Days maps a day key to its bucket.
type Days map[string]Bucket

// ScopeMap maps a scope key (usually a note path) to its days. The global
// calendar uses the empty scope.
type ScopeMap map[string]Days

// DefaultScope is the implicit scope of a calendar not tied to a note.
const DefaultScope = ""

// Bucket returns the tasks of scope/day, or nil.
func (m ScopeMap) Bucket(scope, day string) Bucket {
	return m[scope][day]
}

// ensure returns the days of scope, creating the entry if needed.
func (m ScopeMap) ensure(scope string) Days {
	days, ok := m[scope]
	if !ok || days == nil {
		days = make(Days)
		m[scope] = days
	}
	return days
}

// Scopes returns the scope keys in sorted order.
func (m ScopeMap) Scopes() []string {
	scopes := make([]string, 0, len(m))
	for s := range m {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	return scopes
}

// Clone returns a deep copy so callers can't alias store state.
func (m ScopeMap) Clone() ScopeMap {
	out := make(ScopeMap, len(m))
	for scope, days := range m {
		out[scope] = days.Clone()
	}
	return out
}

// Clone returns a deep copy of the days.
func (d Days) Clone() Days {
	out := make(Days, len(d))
	for key, bucket := range d {
		b := make(Bucket, len(bucket))
		copy(b, bucket)
		out[key] = b
	}
	return out
}

// Keys returns the day keys in sorted order.
func (d Days) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pending returns the number of incomplete tasks.
func (b Bucket) Pending() int {
	n := 0
	for _, t := range b {
		if !t.Completed {
			n++
		}
	}
	return n
}
