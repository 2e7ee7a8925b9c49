// Package board keeps one signed-in user's checklist state in memory and applies
// every edit optimistically against a Backend.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mapletrack/internal/boss"
	"mapletrack/internal/checklist"
	"mapletrack/internal/fanout"
	"mapletrack/internal/optimistic"
	"mapletrack/internal/period"
)

// Backend persists checklist state. *checklist.Service and *client.Client implement it.
type Backend interface {
	LoadWeeklyBossState(ctx context.Context, periodKey string) (checklist.WeeklyBossState, error)
	SaveWeeklyBossState(ctx context.Context, periodKey string, state checklist.WeeklyBossState) error
	LoadMonthlyBossState(ctx context.Context, periodKey string) (checklist.MonthlyBossState, error)
	SaveMonthlyBossState(ctx context.Context, periodKey string, state checklist.MonthlyBossState) error
	LoadMemos(ctx context.Context, periodKey string) ([]checklist.Memo, error)
	SaveMemos(ctx context.Context, periodKey string, memos []checklist.Memo) error
	LoadCalendarEvents(ctx context.Context, periodKey string) ([]checklist.CalendarEvent, error)
	SaveCalendarEvents(ctx context.Context, periodKey string, events []checklist.CalendarEvent) error
}

var (
	ErrNotLoaded       = errors.New("board is not loaded")
	ErrUnknownBoss     = errors.New("unknown boss")
	ErrMemoNotFound    = errors.New("memo not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrEventOutOfMonth = errors.New("event date is outside the loaded month")
)

// Fallback messages shown when a save fails without a usable message.
const (
	msgWeeklyFailed  = "Failed to save weekly boss progress"
	msgMonthlyFailed = "Failed to save monthly boss progress"
	msgMemosFailed   = "Failed to save memos"
	msgEventsFailed  = "Failed to save calendar events"
)

type Options struct {
	Notifier optimistic.Notifier
	Clock    period.Clock
}

// Board holds the four checklist sections for the loaded periods.
type Board struct {
	backend  Backend
	notifier optimistic.Notifier
	clock    period.Clock

	mu         sync.Mutex
	weeklyKey  string
	monthlyKey string

	Weekly  *optimistic.Holder[checklist.WeeklyBossState]
	Monthly *optimistic.Holder[checklist.MonthlyBossState]
	Memos   *optimistic.Holder[[]checklist.Memo]
	Events  *optimistic.Holder[[]checklist.CalendarEvent]
}

func New(backend Backend, opts Options) *Board {
	b := &Board{
		backend:  backend,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		Weekly:   optimistic.NewHolder(checklist.EmptyWeeklyState(), checklist.WeeklyBossState.Clone),
		Monthly:  optimistic.NewHolder(checklist.SanitizeMonthlyState(nil), checklist.MonthlyBossState.Clone),
		Memos:    optimistic.NewHolder([]checklist.Memo{}, checklist.CloneMemos),
		Events:   optimistic.NewHolder([]checklist.CalendarEvent{}, checklist.CloneEvents),
	}
	if b.notifier == nil {
		b.notifier = optimistic.NopNotifier{}
	}
	if b.clock == nil {
		b.clock = period.SystemClock{}
	}
	return b
}

// Keys returns the loaded weekly and monthly period keys.
func (b *Board) Keys() (weekly, monthly string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weeklyKey, b.monthlyKey
}

// Load fetches every section. Empty keys mean the current periods.
// A Reset while loading discards the results.
func (b *Board) Load(ctx context.Context, weeklyKey, monthlyKey string) error {
	now := b.clock.Now()
	if weeklyKey == "" {
		weeklyKey = period.CurrentWeeklyPeriodKey(now)
	}
	if monthlyKey == "" {
		monthlyKey = period.CurrentMonthlyPeriodKey(now)
	}

	gens := [4]uint64{b.Weekly.Generation(), b.Monthly.Generation(), b.Memos.Generation(), b.Events.Generation()}
	var (
		weekly  checklist.WeeklyBossState
		monthly checklist.MonthlyBossState
		memos   []checklist.Memo
		events  []checklist.CalendarEvent
	)
	err := fanout.Run(ctx, 4,
		func(ctx context.Context) (err error) {
			weekly, err = b.backend.LoadWeeklyBossState(ctx, weeklyKey)
			return err
		},
		func(ctx context.Context) (err error) {
			monthly, err = b.backend.LoadMonthlyBossState(ctx, monthlyKey)
			return err
		},
		func(ctx context.Context) (err error) {
			memos, err = b.backend.LoadMemos(ctx, weeklyKey)
			return err
		},
		func(ctx context.Context) (err error) {
			events, err = b.backend.LoadCalendarEvents(ctx, monthlyKey)
			return err
		},
	)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	checklist.SortMemos(memos)
	checklist.SortEvents(events)
	if !b.Weekly.SetIf(gens[0], weekly) || !b.Monthly.SetIf(gens[1], monthly) ||
		!b.Memos.SetIf(gens[2], memos) || !b.Events.SetIf(gens[3], events) {
		return nil
	}

	b.mu.Lock()
	b.weeklyKey, b.monthlyKey = weeklyKey, monthlyKey
	b.mu.Unlock()
	return nil
}

// Reset clears every section, e.g. on logout. Saves still in flight cannot roll
// back into the cleared board.
func (b *Board) Reset() {
	b.Weekly.Reset(checklist.EmptyWeeklyState())
	b.Monthly.Reset(checklist.SanitizeMonthlyState(nil))
	b.Memos.Reset([]checklist.Memo{})
	b.Events.Reset([]checklist.CalendarEvent{})

	b.mu.Lock()
	b.weeklyKey, b.monthlyKey = "", ""
	b.mu.Unlock()
}

// ToggleWeeklyBoss flips one boss for one character. Un-clearing removes the entry.
func (b *Board) ToggleWeeklyBoss(ctx context.Context, worldID, characterID, bossID string) *optimistic.Pending {
	key, err := b.weekly()
	if err != nil {
		return b.fail(err)
	}
	now := b.clock.Now()
	return optimistic.Apply(ctx, b.Weekly, func(prev checklist.WeeklyBossState) (checklist.WeeklyBossState, error) {
		if !boss.IsWeekly(bossID) {
			return prev, fmt.Errorf("%w: %q", ErrUnknownBoss, bossID)
		}
		w, c := orSentinel(worldID, checklist.UnassignedWorld), orSentinel(characterID, checklist.UnassignedCharacter)
		chars := prev.Worlds[w]
		if chars == nil {
			chars = checklist.CharacterMap{}
			prev.Worlds[w] = chars
		}
		bosses := chars[c]
		if bosses == nil {
			bosses = checklist.BossMap{}
			chars[c] = bosses
		}
		if bosses[bossID].Cleared() {
			delete(bosses, bossID)
		} else {
			bosses[bossID] = checklist.ClearedNow(now)
		}
		prev.Version = checklist.CurrentWeeklyVersion
		return prev.Prune(), nil
	}, func(ctx context.Context, next checklist.WeeklyBossState) error {
		return b.backend.SaveWeeklyBossState(ctx, key, next)
	}, b.opts(msgWeeklyFailed, ""))
}

// ClearCharacter removes every weekly clear for one character.
func (b *Board) ClearCharacter(ctx context.Context, worldID, characterID string) *optimistic.Pending {
	key, err := b.weekly()
	if err != nil {
		return b.fail(err)
	}
	return optimistic.Apply(ctx, b.Weekly, func(prev checklist.WeeklyBossState) (checklist.WeeklyBossState, error) {
		w, c := orSentinel(worldID, checklist.UnassignedWorld), orSentinel(characterID, checklist.UnassignedCharacter)
		if chars := prev.Worlds[w]; chars != nil {
			delete(chars, c)
		}
		return prev.Prune(), nil
	}, func(ctx context.Context, next checklist.WeeklyBossState) error {
		return b.backend.SaveWeeklyBossState(ctx, key, next)
	}, b.opts(msgWeeklyFailed, ""))
}

// ToggleMonthlyBoss flips a monthly boss between cleared and not cleared.
func (b *Board) ToggleMonthlyBoss(ctx context.Context, bossID string) *optimistic.Pending {
	key, err := b.monthly()
	if err != nil {
		return b.fail(err)
	}
	now := b.clock.Now()
	return optimistic.Apply(ctx, b.Monthly, func(prev checklist.MonthlyBossState) (checklist.MonthlyBossState, error) {
		if !boss.IsMonthly(bossID) {
			return prev, fmt.Errorf("%w: %q", ErrUnknownBoss, bossID)
		}
		if prev[bossID].Cleared() {
			prev[bossID] = checklist.BossClear{}
		} else {
			prev[bossID] = checklist.ClearedNow(now)
		}
		return prev, nil
	}, func(ctx context.Context, next checklist.MonthlyBossState) error {
		return b.backend.SaveMonthlyBossState(ctx, key, next)
	}, b.opts(msgMonthlyFailed, ""))
}

// AddMemo creates a memo and shows it first.
func (b *Board) AddMemo(ctx context.Context, text, dueDate string) *optimistic.Pending {
	memo, err := checklist.NewMemo(text, dueDate, b.clock.Now())
	if err != nil {
		return b.fail(err)
	}
	return b.updateMemos(ctx, func(prev []checklist.Memo) ([]checklist.Memo, error) {
		next := append([]checklist.Memo{memo}, prev...)
		checklist.SortMemos(next)
		return next, nil
	}, "Memo added")
}

func (b *Board) EditMemo(ctx context.Context, id, text string) *optimistic.Pending {
	text = strings.TrimSpace(text)
	if text == "" {
		return b.fail(&checklist.ValidationError{Entity: "memo", Fields: []string{"text"}})
	}
	return b.editMemo(ctx, id, func(m *checklist.Memo) { m.Text = text })
}

// SetMemoDueDate sets or, with an empty dueDate, clears the due date.
func (b *Board) SetMemoDueDate(ctx context.Context, id, dueDate string) *optimistic.Pending {
	dueDate = strings.TrimSpace(dueDate)
	if dueDate != "" && !period.IsDateKey(dueDate) {
		return b.fail(&checklist.ValidationError{Entity: "memo", Fields: []string{"dueDate"}})
	}
	return b.editMemo(ctx, id, func(m *checklist.Memo) {
		if dueDate == "" {
			m.DueDate = nil
			return
		}
		m.DueDate = &dueDate
	})
}

func (b *Board) ToggleMemo(ctx context.Context, id string) *optimistic.Pending {
	return b.editMemo(ctx, id, func(m *checklist.Memo) { m.Completed = !m.Completed })
}

func (b *Board) DeleteMemo(ctx context.Context, id string) *optimistic.Pending {
	return b.updateMemos(ctx, func(prev []checklist.Memo) ([]checklist.Memo, error) {
		next := make([]checklist.Memo, 0, len(prev))
		for _, m := range prev {
			if m.ID != id {
				next = append(next, m)
			}
		}
		if len(next) == len(prev) {
			return prev, fmt.Errorf("%w: %s", ErrMemoNotFound, id)
		}
		return next, nil
	}, "")
}

func (b *Board) editMemo(ctx context.Context, id string, edit func(*checklist.Memo)) *optimistic.Pending {
	stamp := checklist.Timestamp(b.clock.Now())
	return b.updateMemos(ctx, func(prev []checklist.Memo) ([]checklist.Memo, error) {
		for i := range prev {
			if prev[i].ID == id {
				edit(&prev[i])
				prev[i].UpdatedAt = &stamp
				return prev, nil
			}
		}
		return prev, fmt.Errorf("%w: %s", ErrMemoNotFound, id)
	}, "")
}

func (b *Board) updateMemos(ctx context.Context, reduce func([]checklist.Memo) ([]checklist.Memo, error), success string) *optimistic.Pending {
	key, err := b.weekly()
	if err != nil {
		return b.fail(err)
	}
	return optimistic.Apply(ctx, b.Memos, reduce, func(ctx context.Context, next []checklist.Memo) error {
		return b.backend.SaveMemos(ctx, key, next)
	}, b.opts(msgMemosFailed, success))
}

// EventPatch replaces the editable fields of an event.
type EventPatch struct {
	Title   string
	Friends []string
	Memo    string
}

// AddEvent creates an event on dateKey, which must fall in the loaded month.
func (b *Board) AddEvent(ctx context.Context, dateKey, title string, friends []string, memo string) *optimistic.Pending {
	event, err := checklist.NewEvent(dateKey, title, friends, memo, b.clock.Now())
	if err != nil {
		return b.fail(err)
	}
	return b.updateEvents(ctx, event.DateKey, func(prev []checklist.CalendarEvent) ([]checklist.CalendarEvent, error) {
		next := append(prev, event)
		checklist.SortEvents(next)
		return next, nil
	}, "Event saved")
}

func (b *Board) UpdateEvent(ctx context.Context, id string, patch EventPatch) *optimistic.Pending {
	// Validate the patch the same way a new event is validated.
	probe, err := checklist.NewEvent("2000-01-01", patch.Title, patch.Friends, patch.Memo, b.clock.Now())
	if err != nil {
		return b.fail(err)
	}
	stamp := checklist.Timestamp(b.clock.Now())
	return b.updateEvents(ctx, "", func(prev []checklist.CalendarEvent) ([]checklist.CalendarEvent, error) {
		for i := range prev {
			if prev[i].ID == id {
				prev[i].Title = probe.Title
				prev[i].Friends = probe.Friends
				prev[i].Memo = probe.Memo
				prev[i].UpdatedAt = &stamp
				return prev, nil
			}
		}
		return prev, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}, "Event saved")
}

func (b *Board) DeleteEvent(ctx context.Context, id string) *optimistic.Pending {
	return b.updateEvents(ctx, "", func(prev []checklist.CalendarEvent) ([]checklist.CalendarEvent, error) {
		next := make([]checklist.CalendarEvent, 0, len(prev))
		for _, e := range prev {
			if e.ID != id {
				next = append(next, e)
			}
		}
		if len(next) == len(prev) {
			return prev, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return next, nil
	}, "")
}

func (b *Board) updateEvents(ctx context.Context, dateKey string, reduce func([]checklist.CalendarEvent) ([]checklist.CalendarEvent, error), success string) *optimistic.Pending {
	key, err := b.monthly()
	if err != nil {
		return b.fail(err)
	}
	if dateKey != "" {
		month, _ := period.MonthKeyOfDate(dateKey)
		if month+"-01" != key {
			return b.fail(fmt.Errorf("%w: %s not in %s", ErrEventOutOfMonth, dateKey, key))
		}
	}
	return optimistic.Apply(ctx, b.Events, reduce, func(ctx context.Context, next []checklist.CalendarEvent) error {
		return b.backend.SaveCalendarEvents(ctx, key, next)
	}, b.opts(msgEventsFailed, success))
}

func (b *Board) weekly() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.weeklyKey == "" {
		return "", ErrNotLoaded
	}
	return b.weeklyKey, nil
}

func (b *Board) monthly() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.monthlyKey == "" {
		return "", ErrNotLoaded
	}
	return b.monthlyKey, nil
}

func (b *Board) opts(fallback, success string) optimistic.Options {
	return optimistic.Options{Notifier: b.notifier, FallbackError: fallback, SuccessMessage: success}
}

// fail reports a rejected action the same way a failed save is reported.
func (b *Board) fail(err error) *optimistic.Pending {
	b.notifier.Error(err.Error())
	return optimistic.Failed(err)
}

func orSentinel(id, sentinel string) string {
	if strings.TrimSpace(id) == "" {
		return sentinel
	}
	return id
}
