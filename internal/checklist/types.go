// Package checklist holds the period-keyed checklist state shapes, the sanitizers that
// normalize persisted JSON into them, and the service that loads and saves them per user.
package checklist

import (
	"sort"
	"time"
)

// CurrentWeeklyVersion is the schema version written for weekly boss state.
const CurrentWeeklyVersion = 2

// Sentinel keys that legacy flat weekly data is nested under.
const (
	UnassignedWorld     = "__unassigned_world__"
	UnassignedCharacter = "__unassigned_character__"
)

type (
	WorldID     = string
	CharacterID = string
	BossID      = string
)

// BossClear marks a boss as cleared in the current period. ClearedAt nil means not cleared.
type BossClear struct {
	ClearedAt *string `json:"clearedAt"`
}

func (c BossClear) Cleared() bool { return c.ClearedAt != nil }

// ClearedNow returns a cleared entry stamped with now.
func ClearedNow(now time.Time) BossClear {
	s := Timestamp(now)
	return BossClear{ClearedAt: &s}
}

type (
	BossMap      map[BossID]BossClear
	CharacterMap map[CharacterID]BossMap
	WorldMap     map[WorldID]CharacterMap
)

// WeeklyBossState is one user's weekly boss progress for one weekly period.
type WeeklyBossState struct {
	Version int      `json:"version"`
	Worlds  WorldMap `json:"worlds"`
}

// EmptyWeeklyState is the zero value persisted for a user with no weekly progress.
func EmptyWeeklyState() WeeklyBossState {
	return WeeklyBossState{Version: CurrentWeeklyVersion, Worlds: WorldMap{}}
}

func (s WeeklyBossState) IsEmpty() bool { return len(s.Worlds) == 0 }

// Clone deep-copies the state so reducers never mutate a shared snapshot.
func (s WeeklyBossState) Clone() WeeklyBossState {
	out := WeeklyBossState{Version: s.Version, Worlds: make(WorldMap, len(s.Worlds))}
	for w, chars := range s.Worlds {
		cm := make(CharacterMap, len(chars))
		for c, bosses := range chars {
			cm[c] = bosses.Clone()
		}
		out.Worlds[w] = cm
	}
	return out
}

// Prune removes empty character and world maps in place.
func (s WeeklyBossState) Prune() WeeklyBossState {
	for w, chars := range s.Worlds {
		for c, bosses := range chars {
			if len(bosses) == 0 {
				delete(chars, c)
			}
		}
		if len(chars) == 0 {
			delete(s.Worlds, w)
		}
	}
	return s
}

func (m BossMap) Clone() BossMap {
	out := make(BossMap, len(m))
	for id, entry := range m {
		if entry.ClearedAt != nil {
			v := *entry.ClearedAt
			entry.ClearedAt = &v
		}
		out[id] = entry
	}
	return out
}

// MonthlyBossState maps every known monthly boss to its clear entry.
type MonthlyBossState map[BossID]BossClear

func (s MonthlyBossState) Clone() MonthlyBossState {
	return MonthlyBossState(BossMap(s).Clone())
}

// Memo is a free-text reminder. Lists are stored whole per weekly period.
type Memo struct {
	ID        string  `json:"id" validate:"required"`
	Text      string  `json:"text" validate:"required"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"createdAt" validate:"required"`
	UpdatedAt *string `json:"updatedAt"`
	DueDate   *string `json:"dueDate,omitempty" validate:"omitempty,datekey"`
}

// CalendarEvent is a dated plan with friends. Lists are stored whole per monthly period.
type CalendarEvent struct {
	ID        string   `json:"id" validate:"required"`
	DateKey   string   `json:"dateKey" validate:"required,datekey"`
	Title     string   `json:"title" validate:"required"`
	Friends   []string `json:"friends"`
	Memo      *string  `json:"memo,omitempty"`
	CreatedAt string   `json:"createdAt" validate:"required"`
	UpdatedAt *string  `json:"updatedAt"`
}

// SortMemos orders memos newest first.
func SortMemos(memos []Memo) {
	sort.SliceStable(memos, func(i, j int) bool {
		return memos[i].CreatedAt > memos[j].CreatedAt
	})
}

// SortEvents orders events by date, then creation time.
func SortEvents(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].DateKey != events[j].DateKey {
			return events[i].DateKey < events[j].DateKey
		}
		return events[i].CreatedAt < events[j].CreatedAt
	})
}

// CloneMemos copies a memo list including pointer fields.
func CloneMemos(memos []Memo) []Memo {
	out := make([]Memo, len(memos))
	for i, m := range memos {
		m.UpdatedAt = cloneString(m.UpdatedAt)
		m.DueDate = cloneString(m.DueDate)
		out[i] = m
	}
	return out
}

// CloneEvents copies an event list including slices and pointer fields.
func CloneEvents(events []CalendarEvent) []CalendarEvent {
	out := make([]CalendarEvent, len(events))
	for i, e := range events {
		e.Friends = append([]string{}, e.Friends...)
		e.Memo = cloneString(e.Memo)
		e.UpdatedAt = cloneString(e.UpdatedAt)
		out[i] = e
	}
	return out
}

// Timestamp formats t the way blobs store instants (UTC, millisecond RFC 3339).
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
