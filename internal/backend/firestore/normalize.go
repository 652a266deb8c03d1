package firestore

import (
	"time"

	"smartodo/internal/task"
)

// taskFromDoc maps a raw document onto the canonical record shape. The
// source data is inconsistent about timestamp types (server Timestamp,
// ISO-8601 string, or raw number), so everything is normalized to epoch
// milliseconds here, before the record reaches the cache.
func taskFromDoc(id string, data map[string]any) task.Task {
	t := task.Task{
		ID:        id,
		Title:     asString(data["title"]),
		Notes:     asString(data["notes"]),
		Category:  asString(data["category"]),
		Priority:  task.Priority(asString(data["priority"])),
		Completed: asBool(data["completed"]),
		CreatedAt: asMillis(data["createdAt"]),
	}
	if _, ok := data["due"]; ok {
		if ms := asMillis(data["due"]); ms != 0 {
			t.Due = &ms
		}
	}
	return t
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asMillis accepts a server timestamp (time.Time), an ISO-8601 string, or a
// raw epoch-millisecond number. Anything else yields 0.
func asMillis(v any) int64 {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts.UnixMilli()
		}
		return 0
	default:
		return 0
	}
}
