package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cwarden/wkcal/internal/week"
)

// taskRecord is the structured entry shape. Older documents store plain
// strings instead; both are accepted on read and records are always written.
type taskRecord struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*t = Task{Text: text}
		return nil
	}

	var rec taskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("task entry: %w", err)
	}
	*t = Task(rec)
	return nil
}

func (b Bucket) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Task(b))
}

func (d Days) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Bucket(d))
}

// Decode parses a persisted document. Top-level values that are arrays are
// days of the DefaultScope (the single-scope layout); objects are scopes.
// Entries without an id get a stable one, blank entries are dropped and day keys are
// normalized, merging buckets that normalize to the same key.
func Decode(data []byte) (ScopeMap, error) {
	m := make(ScopeMap)
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	for key, raw := range top {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}

		if raw[0] == '[' {
			bucket, err := decodeBucket(raw)
			if err != nil {
				return nil, fmt.Errorf("day %q: %w", key, err)
			}
			addBucket(m.ensure(DefaultScope), key, bucket)
			continue
		}

		var days map[string]json.RawMessage
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, fmt.Errorf("scope %q: %w", key, err)
		}
		scope := m.ensure(key)
		for day, rawBucket := range days {
			bucket, err := decodeBucket(rawBucket)
			if err != nil {
				return nil, fmt.Errorf("scope %q day %q: %w", key, day, err)
			}
			addBucket(scope, day, bucket)
		}
	}

	for scope, days := range m {
		for day, bucket := range days {
			for i := range bucket {
				if bucket[i].ID == "" {
					bucket[i].ID = legacyID(scope, day, i, bucket[i].Text)
				}
			}
		}
	}
	return m, nil
}

var legacyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/cwarden/wkcal/legacy-task"))

// legacyID names an entry stored without an id. It depends only on where the
// entry sits and what it says, so every load of an unchanged document agrees.
func legacyID(scope, day string, pos int, text string) string {
	name := scope + "\x00" + day + "\x00" + strconv.Itoa(pos) + "\x00" + text
	return uuid.NewSHA1(legacyNamespace, []byte(name)).String()
}

func decodeBucket(raw json.RawMessage) (Bucket, error) {
	var tasks []Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, err
	}

	bucket := make(Bucket, 0, len(tasks))
	for _, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		bucket = append(bucket, t)
	}
	return bucket, nil
}

func addBucket(days Days, key string, bucket Bucket) {
	key = week.NormalizeKey(key)
	days[key] = append(days[key], bucket...)
	if days[key] == nil {
		days[key] = Bucket{}
	}
}

// Encode serializes the full map with two-space indentation.
func Encode(m ScopeMap) ([]byte, error) {
	if m == nil {
		m = ScopeMap{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
