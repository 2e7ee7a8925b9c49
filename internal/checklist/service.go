package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mapletrack/internal/archive"
	"mapletrack/internal/auth"
	"mapletrack/internal/fanout"
	"mapletrack/internal/gate"
	"mapletrack/internal/period"
	"mapletrack/internal/store"
)

// DefaultRetentionMonths is how far back rows are kept when no retention is configured.
const DefaultRetentionMonths = 6

// DefaultCleanupInterval bounds how often EnsureCleanup actually runs per user.
const DefaultCleanupInterval = time.Hour

type rowStore interface {
	FetchRow(ctx context.Context, userID string, category store.Category, periodKey string) (json.RawMessage, bool, error)
	UpsertRow(ctx context.Context, userID string, category store.Category, periodKey string, data json.RawMessage) error
	DeleteRow(ctx context.Context, userID string, category store.Category, periodKey string) error
	FetchRange(ctx context.Context, userID string, category store.Category, from string) ([]store.Row, error)
	FetchOlderThan(ctx context.Context, userID string, categories []store.Category, cutoff string) ([]store.Row, error)
	CleanupOlderThan(ctx context.Context, userID string, categories []store.Category, cutoff string) (int64, error)
}

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Logger          *zap.Logger
	Clock           period.Clock
	Gate            gate.Gate
	Archiver        archive.Archiver
	RetentionMonths int
	CleanupInterval time.Duration
	FanoutLimit     int
}

// Service loads and saves one user's checklist rows. The user always comes from ctx.
type Service struct {
	rows      rowStore
	logger    *zap.Logger
	clock     period.Clock
	gate      gate.Gate
	archiver  archive.Archiver
	retention int
	interval  time.Duration
	fanout    int
}

func NewService(rows rowStore, opts Options) *Service {
	s := &Service{
		rows:      rows,
		logger:    opts.Logger,
		clock:     opts.Clock,
		gate:      opts.Gate,
		archiver:  opts.Archiver,
		retention: opts.RetentionMonths,
		interval:  opts.CleanupInterval,
		fanout:    opts.FanoutLimit,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = period.SystemClock{}
	}
	if s.gate == nil {
		s.gate = gate.NewMemoryGate(s.clock.Now)
	}
	if s.archiver == nil {
		s.archiver = archive.Nop{}
	}
	if s.retention <= 0 {
		s.retention = DefaultRetentionMonths
	}
	if s.interval <= 0 {
		s.interval = DefaultCleanupInterval
	}
	if s.fanout <= 0 {
		s.fanout = fanout.DefaultLimit
	}
	return s
}

// Now is the service clock. Handlers use it so keys and timestamps agree.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// LoadWeeklyBossState returns the sanitized weekly state, upgrading legacy rows.
func (s *Service) LoadWeeklyBossState(ctx context.Context, periodKey string) (WeeklyBossState, error) {
	raw, found, err := s.fetch(ctx, store.CategoryWeeklyBoss, periodKey)
	if err != nil || !found {
		return EmptyWeeklyState(), err
	}
	return WeeklyStateFromJSON(raw), nil
}

// SaveWeeklyBossState writes the pruned state. An empty state deletes the row.
func (s *Service) SaveWeeklyBossState(ctx context.Context, periodKey string, state WeeklyBossState) error {
	next := state.Clone().Prune()
	next.Version = CurrentWeeklyVersion
	if next.IsEmpty() {
		return s.remove(ctx, store.CategoryWeeklyBoss, periodKey)
	}
	return s.save(ctx, store.CategoryWeeklyBoss, periodKey, next)
}

// LoadMonthlyBossState always returns an entry for every known monthly boss.
func (s *Service) LoadMonthlyBossState(ctx context.Context, periodKey string) (MonthlyBossState, error) {
	raw, found, err := s.fetch(ctx, store.CategoryMonthlyBoss, periodKey)
	if err != nil || !found {
		return SanitizeMonthlyState(nil), err
	}
	return MonthlyStateFromJSON(raw), nil
}

func (s *Service) SaveMonthlyBossState(ctx context.Context, periodKey string, state MonthlyBossState) error {
	return s.save(ctx, store.CategoryMonthlyBoss, periodKey, SanitizeMonthlyState(state))
}

// LoadMemos returns the memo list for a weekly period, newest first.
func (s *Service) LoadMemos(ctx context.Context, periodKey string) ([]Memo, error) {
	raw, found, err := s.fetch(ctx, store.CategoryMemo, periodKey)
	if err != nil || !found {
		return []Memo{}, err
	}
	memos, dropped := MemosFromJSON(raw)
	if dropped > 0 {
		s.logger.Warn("dropped malformed memos",
			zap.String("period_key", periodKey),
			zap.Int("dropped", dropped),
		)
	}
	SortMemos(memos)
	return memos, nil
}

// SaveMemos replaces the whole list. An empty list deletes the row.
func (s *Service) SaveMemos(ctx context.Context, periodKey string, memos []Memo) error {
	if len(memos) == 0 {
		return s.remove(ctx, store.CategoryMemo, periodKey)
	}
	return s.save(ctx, store.CategoryMemo, periodKey, memos)
}

// LoadCalendarEvents returns the event list for a monthly period, by date then creation.
func (s *Service) LoadCalendarEvents(ctx context.Context, periodKey string) ([]CalendarEvent, error) {
	raw, found, err := s.fetch(ctx, store.CategoryCalendar, periodKey)
	if err != nil || !found {
		return []CalendarEvent{}, err
	}
	events, dropped := EventsFromJSON(raw)
	if dropped > 0 {
		s.logger.Warn("dropped malformed calendar events",
			zap.String("period_key", periodKey),
			zap.Int("dropped", dropped),
		)
	}
	SortEvents(events)
	return events, nil
}

func (s *Service) SaveCalendarEvents(ctx context.Context, periodKey string, events []CalendarEvent) error {
	if len(events) == 0 {
		return s.remove(ctx, store.CategoryCalendar, periodKey)
	}
	return s.save(ctx, store.CategoryCalendar, periodKey, events)
}

// WeeklyHistoryEntry is one stored weekly period.
type WeeklyHistoryEntry struct {
	PeriodKey string          `json:"periodKey"`
	State     WeeklyBossState `json:"state"`
}

// MonthlyHistoryEntry is one stored monthly period.
type MonthlyHistoryEntry struct {
	PeriodKey string           `json:"periodKey"`
	State     MonthlyBossState `json:"state"`
}

// LoadWeeklyBossHistory lists weekly states from the last months months, oldest first.
func (s *Service) LoadWeeklyBossHistory(ctx context.Context, months int) ([]WeeklyHistoryEntry, error) {
	rows, err := s.history(ctx, store.CategoryWeeklyBoss, period.WeeklyCutoff(s.clock.Now(), s.historyMonths(months)))
	if err != nil {
		return nil, err
	}
	out := make([]WeeklyHistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, WeeklyHistoryEntry{PeriodKey: row.PeriodKey, State: WeeklyStateFromJSON(row.Data)})
	}
	return out, nil
}

// LoadMonthlyBossHistory lists monthly states from the last months months, oldest first.
func (s *Service) LoadMonthlyBossHistory(ctx context.Context, months int) ([]MonthlyHistoryEntry, error) {
	rows, err := s.history(ctx, store.CategoryMonthlyBoss, period.MonthlyCutoff(s.clock.Now(), s.historyMonths(months)))
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyHistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, MonthlyHistoryEntry{PeriodKey: row.PeriodKey, State: MonthlyStateFromJSON(row.Data)})
	}
	return out, nil
}

func (s *Service) historyMonths(months int) int {
	if months <= 0 || months > s.retention {
		return s.retention
	}
	return months
}

func (s *Service) history(ctx context.Context, category store.Category, from string) ([]store.Row, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.FetchRange(ctx, userID, category, from)
	if err != nil {
		return nil, persistErr("load history", category, from, err)
	}
	return rows, nil
}

// CleanupReport describes one EnsureCleanup call.
type CleanupReport struct {
	Ran     bool  `json:"ran"`
	Deleted int64 `json:"deleted"`
}

// EnsureCleanup runs retention cleanup at most once per cleanup interval per user.
func (s *Service) EnsureCleanup(ctx context.Context) (CleanupReport, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return CleanupReport{}, err
	}
	allowed, err := s.gate.Allow(ctx, userID, s.interval)
	if err != nil {
		// An unreachable gate should not block cleanup; it only throttles it.
		s.logger.Warn("cleanup gate unavailable", zap.String("user_id", userID), zap.Error(err))
		allowed = true
	}
	if !allowed {
		return CleanupReport{}, nil
	}
	deleted, err := s.cleanup(ctx, userID)
	if err != nil {
		return CleanupReport{}, err
	}
	return CleanupReport{Ran: true, Deleted: deleted}, nil
}

// Dashboard is the current period's view of every category.
type Dashboard struct {
	WeeklyPeriodKey  string           `json:"weeklyPeriodKey"`
	MonthlyPeriodKey string           `json:"monthlyPeriodKey"`
	Weekly           WeeklyBossState  `json:"weekly"`
	Monthly          MonthlyBossState `json:"monthly"`
	Memos            []Memo           `json:"memos"`
	Events           []CalendarEvent  `json:"events"`
}

// LoadDashboard loads the four current-period sections concurrently.
func (s *Service) LoadDashboard(ctx context.Context) (Dashboard, error) {
	if _, err := auth.UserID(ctx); err != nil {
		return Dashboard{}, err
	}
	now := s.clock.Now()
	d := Dashboard{
		WeeklyPeriodKey:  period.CurrentWeeklyPeriodKey(now),
		MonthlyPeriodKey: period.CurrentMonthlyPeriodKey(now),
	}
	err := fanout.Run(ctx, s.fanout,
		func(ctx context.Context) (err error) {
			d.Weekly, err = s.LoadWeeklyBossState(ctx, d.WeeklyPeriodKey)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Monthly, err = s.LoadMonthlyBossState(ctx, d.MonthlyPeriodKey)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Memos, err = s.LoadMemos(ctx, d.WeeklyPeriodKey)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Events, err = s.LoadCalendarEvents(ctx, d.MonthlyPeriodKey)
			return err
		},
	)
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) fetch(ctx context.Context, category store.Category, periodKey string) (json.RawMessage, bool, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := checkPeriodKey(periodKey); err != nil {
		return nil, false, err
	}
	raw, found, err := s.rows.FetchRow(ctx, userID, category, periodKey)
	if err != nil {
		return nil, false, persistErr("load", category, periodKey, err)
	}
	return raw, found, nil
}

func (s *Service) save(ctx context.Context, category store.Category, periodKey string, value any) error {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return err
	}
	if err := checkPeriodKey(periodKey); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return persistErr("encode", category, periodKey, err)
	}
	if err := s.rows.UpsertRow(ctx, userID, category, periodKey, data); err != nil {
		return persistErr("save", category, periodKey, err)
	}
	s.cleanupAfterWrite(ctx, userID)
	return nil
}

func (s *Service) remove(ctx context.Context, category store.Category, periodKey string) error {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return err
	}
	if err := checkPeriodKey(periodKey); err != nil {
		return err
	}
	if err := s.rows.DeleteRow(ctx, userID, category, periodKey); err != nil {
		return persistErr("delete", category, periodKey, err)
	}
	s.cleanupAfterWrite(ctx, userID)
	return nil
}

// cleanupAfterWrite never fails the write that triggered it.
func (s *Service) cleanupAfterWrite(ctx context.Context, userID string) {
	if _, err := s.cleanup(ctx, userID); err != nil {
		s.logger.Warn("cleanup after write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *Service) cleanup(ctx context.Context, userID string) (int64, error) {
	now := s.clock.Now()
	passes := []struct {
		categories []store.Category
		cutoff     string
	}{
		{store.WeeklyCadence, period.WeeklyCutoff(now, s.retention)},
		{store.MonthlyCadence, period.MonthlyCutoff(now, s.retention)},
	}

	var total int64
	for _, p := range passes {
		if err := s.archiveExpired(ctx, userID, p.categories, p.cutoff); err != nil {
			return total, err
		}
		n, err := s.rows.CleanupOlderThan(ctx, userID, p.categories, p.cutoff)
		if err != nil {
			return total, persistErr("cleanup", p.categories[0], p.cutoff, err)
		}
		total += n
	}
	if total > 0 {
		s.logger.Info("retention cleanup",
			zap.String("user_id", userID),
			zap.Int64("deleted", total),
			zap.Int("retention_months", s.retention),
		)
	}
	return total, nil
}

// archiveExpired copies rows before they are deleted. A failed copy skips the delete.
func (s *Service) archiveExpired(ctx context.Context, userID string, categories []store.Category, cutoff string) error {
	if _, ok := s.archiver.(archive.Nop); ok {
		return nil
	}
	rows, err := s.rows.FetchOlderThan(ctx, userID, categories, cutoff)
	if err != nil {
		return persistErr("load expired", categories[0], cutoff, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.archiver.Archive(ctx, rows); err != nil {
		return fmt.Errorf("archive expired rows: %w", err)
	}
	return nil
}

func checkPeriodKey(periodKey string) error {
	if !period.IsDateKey(periodKey) {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodKey, periodKey)
	}
	return nil
}
