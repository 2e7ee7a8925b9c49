package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mapletrack/internal/auth"
	"mapletrack/internal/gate"
	"mapletrack/internal/period"
	"mapletrack/internal/store"
)

type rowKey struct {
	userID    string
	category  store.Category
	periodKey string
}

// memoryRows is an in-memory rowStore. The err fields inject failures per operation.
type memoryRows struct {
	mu   sync.Mutex
	rows map[rowKey]json.RawMessage

	fetchErr   error
	upsertErr  error
	deleteErr  error
	cleanupErr error
	fetches    int
}

func newMemoryRows() *memoryRows {
	return &memoryRows{rows: make(map[rowKey]json.RawMessage)}
}

func (m *memoryRows) put(userID string, category store.Category, periodKey, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey{userID, category, periodKey}] = json.RawMessage(data)
}

func (m *memoryRows) has(userID string, category store.Category, periodKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[rowKey{userID, category, periodKey}]
	return ok
}

func (m *memoryRows) FetchRow(_ context.Context, userID string, category store.Category, periodKey string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, false, m.fetchErr
	}
	data, ok := m.rows[rowKey{userID, category, periodKey}]
	return data, ok, nil
}

func (m *memoryRows) UpsertRow(_ context.Context, userID string, category store.Category, periodKey string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[rowKey{userID, category, periodKey}] = append(json.RawMessage(nil), data...)
	return nil
}

func (m *memoryRows) DeleteRow(_ context.Context, userID string, category store.Category, periodKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, rowKey{userID, category, periodKey})
	return nil
}

func (m *memoryRows) FetchRange(_ context.Context, userID string, category store.Category, from string) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := []store.Row{}
	for k, data := range m.rows {
		if k.userID == userID && k.category == category && k.periodKey >= from {
			out = append(out, store.Row{UserID: userID, Category: category, PeriodKey: k.periodKey, Data: data})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey < out[j].PeriodKey })
	return out, nil
}

func (m *memoryRows) FetchOlderThan(_ context.Context, userID string, categories []store.Category, cutoff string) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Row{}
	for k, data := range m.rows {
		if k.userID == userID && k.periodKey < cutoff && containsCategory(categories, k.category) {
			out = append(out, store.Row{UserID: userID, Category: k.category, PeriodKey: k.periodKey, Data: data})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey < out[j].PeriodKey })
	return out, nil
}

func (m *memoryRows) CleanupOlderThan(_ context.Context, userID string, categories []store.Category, cutoff string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cleanupErr != nil {
		return 0, m.cleanupErr
	}
	var n int64
	for k := range m.rows {
		if k.userID == userID && k.periodKey < cutoff && containsCategory(categories, k.category) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func containsCategory(categories []store.Category, c store.Category) bool {
	for _, item := range categories {
		if item == c {
			return true
		}
	}
	return false
}

type recordingArchiver struct {
	mu   sync.Mutex
	rows []store.Row
	err  error
}

func (a *recordingArchiver) Archive(_ context.Context, rows []store.Row) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, rows...)
	return nil
}

// 2024-03-15 12:00 KST, a Friday. Weekly key 2024-03-14, monthly key 2024-03-01.
var testNow = time.Date(2024, time.March, 15, 3, 0, 0, 0, time.UTC)

func userCtx() context.Context {
	return auth.WithUser(context.Background(), "user-1")
}

func newTestService(t *testing.T, rows rowStore, opts Options) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts.Logger = zap.New(core)
	if opts.Clock == nil {
		opts.Clock = period.NewFixedClock(testNow)
	}
	return NewService(rows, opts), logs
}

func TestServiceRequiresUser(t *testing.T) {
	rows := newMemoryRows()
	svc, _ := newTestService(t, rows, Options{})
	ctx := context.Background()

	_, err := svc.LoadWeeklyBossState(ctx, "2024-03-14")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.ErrorIs(t, svc.SaveMemos(ctx, "2024-03-14", nil), auth.ErrUnauthenticated)
	_, err = svc.LoadWeeklyBossHistory(ctx, 3)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = svc.EnsureCleanup(ctx)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = svc.LoadDashboard(ctx)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Zero(t, rows.fetches)
}

func TestServiceRejectsInvalidPeriodKeyBeforeStorage(t *testing.T) {
	rows := newMemoryRows()
	svc, _ := newTestService(t, rows, Options{})

	for _, key := range []string{"", "2024-03", "2024-13-01", "03/14/2024", " 2024-03-14"} {
		_, err := svc.LoadMemos(userCtx(), key)
		assert.ErrorIs(t, err, ErrInvalidPeriodKey, key)
	}
	assert.ErrorIs(t, svc.SaveMonthlyBossState(userCtx(), "bad", MonthlyBossState{}), ErrInvalidPeriodKey)
	assert.Zero(t, rows.fetches)
}

func TestLoadWeeklyBossStateMissingRowIsEmpty(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRows(), Options{})
	state, err := svc.LoadWeeklyBossState(userCtx(), "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, EmptyWeeklyState(), state)
}

func TestLoadWeeklyBossStateUpgradesLegacyRow(t *testing.T) {
	rows := newMemoryRows()
	rows.put("user-1", store.CategoryWeeklyBoss, "2024-03-14", `{"lucid-hard":{"clearedAt":"2024-03-14T01:00:00.000Z"}}`)
	svc, _ := newTestService(t, rows, Options{})

	state, err := svc.LoadWeeklyBossState(userCtx(), "2024-03-14")
	require.NoError(t, err)
	assert.True(t, state.Worlds[UnassignedWorld][UnassignedCharacter]["lucid-hard"].Cleared())
}

func TestSaveWeeklyBossStatePrunesAndDeletesWhenEmpty(t *testing.T) {
	rows := newMemoryRows()
	svc, _ := newTestService(t, rows, Options{})
	ctx := userCtx()

	state := WeeklyBossState{Worlds: WorldMap{
		"scania": {"hero": BossMap{"lucid-hard": ClearedNow(testNow)}, "bishop": BossMap{}},
		"bera":   {},
	}}
	require.NoError(t, svc.SaveWeeklyBossState(ctx, "2024-03-14", state))

	// The caller's value is not mutated.
	assert.Len(t, state.Worlds, 2)

	loaded, err := svc.LoadWeeklyBossState(ctx, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, CurrentWeeklyVersion, loaded.Version)
	assert.Equal(t, []string{"scania"}, mapKeys(loaded.Worlds))
	assert.Equal(t, "2024-03-15T03:00:00.000Z", *loaded.Worlds["scania"]["hero"]["lucid-hard"].ClearedAt)

	require.NoError(t, svc.SaveWeeklyBossState(ctx, "2024-03-14", WeeklyBossState{Worlds: WorldMap{"scania": {"hero": BossMap{}}}}))
	assert.False(t, rows.has("user-1", store.CategoryWeeklyBoss, "2024-03-14"))
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestMonthlyStateRoundTripKeepsKnownBossesOnly(t *testing.T) {
	rows := newMemoryRows()
	svc, _ := newTestService(t, rows, Options{})
	ctx := userCtx()

	state, err := svc.LoadMonthlyBossState(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, state, 2)

	state["black-mage-extreme"] = ClearedNow(testNow)
	state["made-up"] = ClearedNow(testNow)
	require.NoError(t, svc.SaveMonthlyBossState(ctx, "2024-03-01", state))

	loaded, err := svc.LoadMonthlyBossState(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.True(t, loaded["black-mage-extreme"].Cleared())
	assert.False(t, loaded["black-mage-hard"].Cleared())
}

func TestLoadMemosSortsAndLogsDroppedElements(t *testing.T) {
	rows := newMemoryRows()
	rows.put("user-1", store.CategoryMemo, "2024-03-14", `[
		{"id":"a","text":"older","createdAt":"2024-03-14T00:00:00.000Z"},
		{"id":"b","text":"newer","createdAt":"2024-03-15T00:00:00.000Z"},
		{"id":"c"}
	]`)
	svc, logs := newTestService(t, rows, Options{})

	memos, err := svc.LoadMemos(userCtx(), "2024-03-14")
	require.NoError(t, err)
	require.Len(t, memos, 2)
	assert.Equal(t, "b", memos[0].ID)
	assert.Equal(t, "a", memos[1].ID)

	warnings := logs.FilterMessage("dropped malformed memos").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, int64(1), warnings[0].ContextMap()["dropped"])
}

func TestSaveMemosEmptyListDeletesRow(t *testing.T) {
	rows := newMemoryRows()
	rows.put("user-1", store.CategoryMemo, "2024-03-14", `[{"id":"a","text":"x","createdAt":"2024-03-14T00:00:00.000Z"}]`)
	svc, _ := newTestService(t, rows, Options{})

	require.NoError(t, svc.SaveMemos(userCtx(), "2024-03-14", []Memo{}))
	assert.False(t, rows.has("user-1", store.CategoryMemo, "2024-03-14"))

	memos, err := svc.LoadMemos(userCtx(), "2024-03-14")
	require.NoError(t, err)
	assert.Empty(t, memos)
	assert.NotNil(t, memos)
}

func TestCalendarEventsRoundTripSorted(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRows(), Options{})
	ctx := userCtx()

	late, err := NewEvent("2024-03-28", "Kalos", []string{"Avery", " "}, "", testNow)
	require.NoError(t, err)
	early, err := NewEvent("2024-03-16", "Seren", nil, "bring pots", testNow.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.SaveCalendarEvents(ctx, "2024-03-01", []CalendarEvent{late, early}))
	events, err := svc.LoadCalendarEvents(ctx, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[0].ID)
	assert.Equal(t, []string{"Avery"}, events[1].Friends)
	assert.Nil(t, events[1].Memo)
	assert.Equal(t, "bring pots", *events[0].Memo)

	require.NoError(t, svc.SaveCalendarEvents(ctx, "2024-03-01", nil))
	events, err = svc.LoadCalendarEvents(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStorageFailuresAreTypedPersistErrors(t *testing.T) {
	boom := errors.New("connection reset")
	rows := newMemoryRows()
	rows.upsertErr = boom
	rows.fetchErr = boom
	svc, _ := newTestService(t, rows, Options{})

	err := svc.SaveMemos(userCtx(), "2024-03-14", []Memo{{ID: "a", Text: "x", CreatedAt: "2024-03-14T00:00:00.000Z"}})
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.Equal(t, store.CategoryMemo, perr.Category)
	assert.Equal(t, "2024-03-14", perr.PeriodKey)
	assert.ErrorIs(t, err, boom)

	_, err = svc.LoadCalendarEvents(userCtx(), "2024-03-01")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
	assert.Equal(t, store.CategoryCalendar, perr.Category)

	_, err = svc.LoadMonthlyBossHistory(userCtx(), 3)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load history", perr.Op)
}

func seedRetentionRows(rows *memoryRows) {
	// Cutoffs at testNow with six months retention: weekly 2023-09-14, monthly 2023-09-01.
	rows.put("user-1", store.CategoryWeeklyBoss, "2023-08-31", `{"version":2,"worlds":{}}`)
	rows.put("user-1", store.CategoryWeeklyBoss, "2023-09-14", `{"version":2,"worlds":{}}`)
	rows.put("user-1", store.CategoryMemo, "2023-09-07", `[]`)
	rows.put("user-1", store.CategoryMonthlyBoss, "2023-08-01", `{}`)
	rows.put("user-1", store.CategoryMonthlyBoss, "2023-11-01", `{}`)
	rows.put("user-1", store.CategoryCalendar, "2023-02-01", `[]`)
	rows.put("user-2", store.CategoryWeeklyBoss, "2023-01-05", `{}`)
}

func TestCleanupRunsAfterEveryWrite(t *testing.T) {
	rows := newMemoryRows()
	seedRetentionRows(rows)
	svc, logs := newTestService(t, rows, Options{})

	require.NoError(t, svc.SaveMemos(userCtx(), "2024-03-14", []Memo{{ID: "a", Text: "x", CreatedAt: "2024-03-14T00:00:00.000Z"}}))

	assert.False(t, rows.has("user-1", store.CategoryWeeklyBoss, "2023-08-31"))
	assert.False(t, rows.has("user-1", store.CategoryMemo, "2023-09-07"))
	assert.False(t, rows.has("user-1", store.CategoryMonthlyBoss, "2023-08-01"))
	assert.False(t, rows.has("user-1", store.CategoryCalendar, "2023-02-01"))

	assert.True(t, rows.has("user-1", store.CategoryWeeklyBoss, "2023-09-14"))
	assert.True(t, rows.has("user-1", store.CategoryMonthlyBoss, "2023-11-01"))
	assert.True(t, rows.has("user-1", store.CategoryMemo, "2024-03-14"))
	assert.True(t, rows.has("user-2", store.CategoryWeeklyBoss, "2023-01-05"))

	entries := logs.FilterMessage("retention cleanup").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ContextMap()["deleted"])
}

func TestCleanupFailureDoesNotFailWrite(t *testing.T) {
	rows := newMemoryRows()
	rows.cleanupErr = errors.New("lock timeout")
	svc, logs := newTestService(t, rows, Options{})

	require.NoError(t, svc.SaveMonthlyBossState(userCtx(), "2024-03-01", MonthlyBossState{}))
	assert.True(t, rows.has("user-1", store.CategoryMonthlyBoss, "2024-03-01"))
	assert.Equal(t, 1, logs.FilterMessage("cleanup after write failed").Len())
}

func TestEnsureCleanupIsGatedPerUser(t *testing.T) {
	rows := newMemoryRows()
	seedRetentionRows(rows)
	clock := period.NewFixedClock(testNow)
	svc, _ := newTestService(t, rows, Options{
		Clock:           clock,
		Gate:            gate.NewMemoryGate(clock.Now),
		CleanupInterval: time.Hour,
	})

	first, err := svc.EnsureCleanup(userCtx())
	require.NoError(t, err)
	assert.True(t, first.Ran)
	assert.Equal(t, int64(4), first.Deleted)

	second, err := svc.EnsureCleanup(userCtx())
	require.NoError(t, err)
	assert.False(t, second.Ran)

	other, err := svc.EnsureCleanup(auth.WithUser(context.Background(), "user-2"))
	require.NoError(t, err)
	assert.True(t, other.Ran)

	clock.Advance(time.Hour)
	third, err := svc.EnsureCleanup(userCtx())
	require.NoError(t, err)
	assert.True(t, third.Ran)
	assert.Zero(t, third.Deleted)
}

func TestEnsureCleanupSurfacesStorageErrors(t *testing.T) {
	rows := newMemoryRows()
	rows.cleanupErr = errors.New("disk full")
	svc, _ := newTestService(t, rows, Options{})

	_, err := svc.EnsureCleanup(userCtx())
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "cleanup", perr.Op)
}

func TestCleanupArchivesBeforeDeleting(t *testing.T) {
	rows := newMemoryRows()
	seedRetentionRows(rows)
	archiver := &recordingArchiver{}
	svc, _ := newTestService(t, rows, Options{Archiver: archiver})

	report, err := svc.EnsureCleanup(userCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Deleted)

	keys := make([]string, 0, len(archiver.rows))
	for _, r := range archiver.rows {
		keys = append(keys, string(r.Category)+"/"+r.PeriodKey)
	}
	assert.ElementsMatch(t, []string{
		"weekly_boss/2023-08-31",
		"memo/2023-09-07",
		"monthly_boss/2023-08-01",
		"calendar/2023-02-01",
	}, keys)
}

func TestCleanupSkipsDeleteWhenArchiveFails(t *testing.T) {
	rows := newMemoryRows()
	seedRetentionRows(rows)
	svc, _ := newTestService(t, rows, Options{Archiver: &recordingArchiver{err: errors.New("bucket missing")}})

	_, err := svc.EnsureCleanup(userCtx())
	require.Error(t, err)
	assert.True(t, rows.has("user-1", store.CategoryWeeklyBoss, "2023-08-31"))
}

func TestHistoryIsOldestFirstAndClampedToRetention(t *testing.T) {
	rows := newMemoryRows()
	rows.put("user-1", store.CategoryWeeklyBoss, "2024-03-14", `{"version":2,"worlds":{"scania":{"hero":{"lucid-hard":{"clearedAt":null}}}}}`)
	rows.put("user-1", store.CategoryWeeklyBoss, "2024-02-08", `{"lucid-hard":{"clearedAt":"2024-02-08T00:00:00.000Z"}}`)
	rows.put("user-1", store.CategoryWeeklyBoss, "2023-12-07", `{"version":2,"worlds":{}}`)
	rows.put("user-1", store.CategoryMonthlyBoss, "2024-01-01", `{"clearedAt":"2024-01-03T00:00:00.000Z"}`)
	rows.put("user-1", store.CategoryMonthlyBoss, "2023-06-01", `{}`)
	svc, _ := newTestService(t, rows, Options{})

	weekly, err := svc.LoadWeeklyBossHistory(userCtx(), 2)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, "2024-02-08", weekly[0].PeriodKey)
	assert.True(t, weekly[0].State.Worlds[UnassignedWorld][UnassignedCharacter]["lucid-hard"].Cleared())
	assert.Equal(t, "2024-03-14", weekly[1].PeriodKey)

	monthly, err := svc.LoadMonthlyBossHistory(userCtx(), 0)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2024-01-01", monthly[0].PeriodKey)
	assert.True(t, monthly[0].State["black-mage-hard"].Cleared())
}

func TestLoadDashboardUsesCurrentPeriods(t *testing.T) {
	rows := newMemoryRows()
	rows.put("user-1", store.CategoryMemo, "2024-03-14", `[{"id":"a","text":"x","createdAt":"2024-03-14T00:00:00.000Z"}]`)
	rows.put("user-1", store.CategoryCalendar, "2024-03-01", `[{"id":"e","dateKey":"2024-03-20","title":"t","createdAt":"2024-03-14T00:00:00.000Z"}]`)
	svc, _ := newTestService(t, rows, Options{FanoutLimit: 2})

	d, err := svc.LoadDashboard(userCtx())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-14", d.WeeklyPeriodKey)
	assert.Equal(t, "2024-03-01", d.MonthlyPeriodKey)
	assert.Len(t, d.Memos, 1)
	assert.Len(t, d.Events, 1)
	assert.Len(t, d.Monthly, 2)
	assert.True(t, d.Weekly.IsEmpty())

	rows.fetchErr = errors.New("timeout")
	_, err = svc.LoadDashboard(userCtx())
	var perr *PersistError
	assert.ErrorAs(t, err, &perr)
}

func TestServiceAgainstSQLite(t *testing.T) {
	db, err := store.OpenStore(context.Background(), store.BackendSQLite, filepath.Join(t.TempDir(), "checklist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, _ := newTestService(t, db, Options{})
	ctx := userCtx()

	memo, err := NewMemo("Buy spell traces", "2024-03-20", testNow)
	require.NoError(t, err)
	require.NoError(t, svc.SaveMemos(ctx, "2024-03-14", []Memo{memo}))

	memos, err := svc.LoadMemos(ctx, "2024-03-14")
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, memo, memos[0])

	// Rows outside the six month window disappear on the next write.
	require.NoError(t, db.UpsertRow(ctx, "user-1", store.CategoryMonthlyBoss, "2023-08-01", json.RawMessage(`{}`)))
	require.NoError(t, db.UpsertRow(ctx, "user-1", store.CategoryMonthlyBoss, "2023-11-01", json.RawMessage(`{}`)))
	require.NoError(t, db.UpsertRow(ctx, "user-1", store.CategoryMonthlyBoss, "2024-02-01", json.RawMessage(`{}`)))
	require.NoError(t, svc.SaveMonthlyBossState(ctx, "2024-03-01", MonthlyBossState{}))

	history, err := svc.LoadMonthlyBossHistory(ctx, 6)
	require.NoError(t, err)
	keys := make([]string, 0, len(history))
	for _, h := range history {
		keys = append(keys, h.PeriodKey)
	}
	assert.Equal(t, []string{"2023-11-01", "2024-02-01", "2024-03-01"}, keys)
}

func TestNewMemoAndEventValidation(t *testing.T) {
	memo, err := NewMemo("  Daily symbols  ", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "Daily symbols", memo.Text)
	assert.Nil(t, memo.DueDate)
	assert.False(t, memo.Completed)
	assert.Equal(t, "2024-03-15T03:00:00.000Z", memo.CreatedAt)
	assert.NotEmpty(t, memo.ID)

	_, err = NewMemo("   ", "", testNow)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"text"}, verr.Fields)

	_, err = NewMemo("x", "next week", testNow)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"dueDate"}, verr.Fields)

	_, err = NewEvent("2024-02-30", "", nil, "", testNow)
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"dateKey", "title"}, verr.Fields)

	event, err := NewEvent("2024-03-20", "Black Mage", []string{"Avery"}, "", testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Avery"}, event.Friends)
	assert.Nil(t, event.UpdatedAt)
}
