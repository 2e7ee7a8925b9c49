package checklist

import (
	"encoding/json"
	"strings"

	"mapletrack/internal/boss"
)

// Sanitizers are the trust boundary between stored blobs and typed state. They never
// fail: malformed input degrades to the documented empty or default shape.

// SanitizeBossEntries keeps only well-formed {clearedAt: string|null} objects.
// Entries without a clearedAt key are dropped so unrelated objects never become bosses.
func SanitizeBossEntries(value any) BossMap {
	out := BossMap{}
	obj, ok := asObject(generic(value))
	if !ok {
		return out
	}
	for id, raw := range obj {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if entry, ok := bossEntry(raw); ok {
			out[id] = entry
		}
	}
	return out
}

// SanitizeMonthlyState returns an entry for every known monthly boss.
// A legacy single {clearedAt} object is assigned to the first known boss.
func SanitizeMonthlyState(value any) MonthlyBossState {
	ids := boss.MonthlyIDs()
	out := make(MonthlyBossState, len(ids))
	for _, id := range ids {
		out[id] = BossClear{}
	}

	obj, ok := asObject(generic(value))
	if !ok {
		return out
	}
	if entry, legacy := bossEntry(obj); legacy {
		if len(ids) > 0 {
			out[ids[0]] = entry
		}
		return out
	}
	for _, id := range ids {
		if entry, ok := bossEntry(obj[id]); ok {
			out[id] = entry
		}
	}
	return out
}

// SanitizeMemos keeps memos with string id, text and createdAt.
func SanitizeMemos(value any) []Memo {
	memos, _ := SanitizeMemosReport(value)
	return memos
}

// SanitizeMemosReport is SanitizeMemos plus the number of dropped elements.
func SanitizeMemosReport(value any) ([]Memo, int) {
	out := []Memo{}
	items, ok := generic(value).([]any)
	if !ok {
		return out, 0
	}
	dropped := 0
	for _, raw := range items {
		obj, ok := asObject(raw)
		if !ok {
			dropped++
			continue
		}
		id, okID := obj["id"].(string)
		text, okText := obj["text"].(string)
		createdAt, okCreated := obj["createdAt"].(string)
		if !okID || !okText || !okCreated {
			dropped++
			continue
		}
		out = append(out, Memo{
			ID:        id,
			Text:      text,
			Completed: truthy(obj["completed"]),
			CreatedAt: createdAt,
			UpdatedAt: optionalString(obj["updatedAt"]),
			DueDate:   optionalString(obj["dueDate"]),
		})
	}
	return out, dropped
}

// SanitizeEvents keeps events with string id, title, createdAt and dateKey.
func SanitizeEvents(value any) []CalendarEvent {
	events, _ := SanitizeEventsReport(value)
	return events
}

// SanitizeEventsReport is SanitizeEvents plus the number of dropped elements.
func SanitizeEventsReport(value any) ([]CalendarEvent, int) {
	out := []CalendarEvent{}
	items, ok := generic(value).([]any)
	if !ok {
		return out, 0
	}
	dropped := 0
	for _, raw := range items {
		obj, ok := asObject(raw)
		if !ok {
			dropped++
			continue
		}
		id, okID := obj["id"].(string)
		title, okTitle := obj["title"].(string)
		createdAt, okCreated := obj["createdAt"].(string)
		dateKey, okDate := obj["dateKey"].(string)
		if !okID || !okTitle || !okCreated || !okDate {
			dropped++
			continue
		}
		friends := []string{}
		if list, ok := obj["friends"].([]any); ok {
			for _, f := range list {
				if s, ok := f.(string); ok {
					friends = append(friends, s)
				}
			}
		}
		out = append(out, CalendarEvent{
			ID:        id,
			DateKey:   dateKey,
			Title:     title,
			Friends:   friends,
			Memo:      optionalString(obj["memo"]),
			CreatedAt: createdAt,
			UpdatedAt: optionalString(obj["updatedAt"]),
		})
	}
	return out, dropped
}

// FromJSON variants decode a raw blob first. Invalid JSON is treated as missing.

func WeeklyStateFromJSON(raw json.RawMessage) WeeklyBossState {
	return SanitizeWeeklyState(decodeRaw(raw))
}

func MonthlyStateFromJSON(raw json.RawMessage) MonthlyBossState {
	return SanitizeMonthlyState(decodeRaw(raw))
}

func MemosFromJSON(raw json.RawMessage) ([]Memo, int) {
	return SanitizeMemosReport(decodeRaw(raw))
}

func EventsFromJSON(raw json.RawMessage) ([]CalendarEvent, int) {
	return SanitizeEventsReport(decodeRaw(raw))
}

func bossEntry(raw any) (BossClear, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return BossClear{}, false
	}
	v, present := obj["clearedAt"]
	if !present {
		return BossClear{}, false
	}
	switch at := v.(type) {
	case nil:
		return BossClear{}, true
	case string:
		if strings.TrimSpace(at) == "" {
			return BossClear{}, true
		}
		return BossClear{ClearedAt: &at}, true
	default:
		return BossClear{}, false
	}
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok && obj != nil
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// truthy mirrors loose boolean coercion for the completed flag.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func decodeRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// generic converts typed Go values into the map/slice shape json.Unmarshal produces,
// so sanitizers accept both decoded blobs and in-process structs.
func generic(v any) any {
	switch x := v.(type) {
	case nil, map[string]any, []any, string, float64, bool, json.Number:
		return x
	case json.RawMessage:
		return decodeRaw(x)
	case []byte:
		return decodeRaw(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return decodeRaw(data)
	}
}
