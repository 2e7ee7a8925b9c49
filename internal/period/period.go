// Package period derives reset-cycle identifiers (period keys) from wall-clock instants.
//
// Every key is computed in the fixed KST offset (UTC+9) regardless of the caller's
// local zone. Weekly cycles start on ResetWeekday, monthly cycles on the 1st.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KST is the fixed zone all keys are derived in.
var KST = time.FixedZone("KST", 9*60*60)

// ResetWeekday is the weekday the weekly boss cycle restarts on.
const ResetWeekday = time.Thursday

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Kind identifies a reset cycle.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindDaily, KindWeekly, KindMonthly:
		return true
	default:
		return false
	}
}

// ParseKind normalizes user input into a Kind.
func ParseKind(input string) (Kind, error) {
	k := Kind(strings.TrimSpace(strings.ToLower(input)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid period kind: %q", input)
	}
	return k, nil
}

// Key returns the canonical period key of t for the given cycle kind.
func Key(t time.Time, kind Kind) (string, error) {
	switch kind {
	case KindDaily:
		return DateKey(t), nil
	case KindWeekly:
		return WeeklyResetKey(t), nil
	case KindMonthly:
		return MonthlyResetKey(t), nil
	default:
		return "", fmt.Errorf("invalid period kind: %q", kind)
	}
}

// DateKey formats t as YYYY-MM-DD in KST.
func DateKey(t time.Time) string {
	return t.In(KST).Format(dateLayout)
}

// MonthKey formats t as YYYY-MM in KST.
func MonthKey(t time.Time) string {
	return t.In(KST).Format(monthLayout)
}

// WeeklyResetKey is the date key of the most recent ResetWeekday at or before t.
func WeeklyResetKey(t time.Time) string {
	local := startOfDay(t.In(KST))
	offset := (int(local.Weekday()) - int(ResetWeekday) + 7) % 7
	return local.AddDate(0, 0, -offset).Format(dateLayout)
}

// MonthlyResetKey is the date key of the first day of t's month.
func MonthlyResetKey(t time.Time) string {
	local := t.In(KST)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, KST).Format(dateLayout)
}

// ParseMonthKey splits a YYYY-MM key. ok is false for malformed keys.
func ParseMonthKey(monthKey string) (year, month int, ok bool) {
	parts := strings.Split(strings.TrimSpace(monthKey), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

// ParseDateKey parses a YYYY-MM-DD key into midnight KST.
func ParseDateKey(dateKey string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dateKey), KST)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDateKey reports whether s is a well-formed YYYY-MM-DD key.
func IsDateKey(s string) bool {
	if s != strings.TrimSpace(s) {
		return false
	}
	_, ok := ParseDateKey(s)
	return ok
}

// ShiftMonthKey adds n months (n may be negative) to monthKey.
// Malformed keys are shifted from the current month of now.
func ShiftMonthKey(monthKey string, n int, now time.Time) string {
	y, m, ok := ParseMonthKey(monthKey)
	if !ok {
		local := now.In(KST)
		y, m = local.Year(), int(local.Month())
	}
	return time.Date(y, time.Month(m)+time.Month(n), 1, 0, 0, 0, 0, KST).Format(monthLayout)
}

// AdjacentMonthKey is ShiftMonthKey for calendar navigation (delta is usually ±1).
func AdjacentMonthKey(monthKey string, delta int, now time.Time) string {
	return ShiftMonthKey(monthKey, delta, now)
}

// ShiftDateByMonths moves dateKey n months, clamping the day to the target month's length.
func ShiftDateByMonths(dateKey string, n int, now time.Time) string {
	t, ok := ParseDateKey(dateKey)
	if !ok {
		t = startOfDay(now.In(KST))
	}
	target := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, KST)
	day := t.Day()
	if last := DaysInMonth(target.Year(), int(target.Month())); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, KST).Format(dateLayout)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, KST).Day()
}

func CurrentWeeklyPeriodKey(now time.Time) string  { return WeeklyResetKey(now) }
func CurrentMonthlyPeriodKey(now time.Time) string { return MonthlyResetKey(now) }
func DefaultCalendarMonthKey(now time.Time) string { return MonthKey(now) }

// DefaultSelectedDate is today when monthKey is the current month, otherwise its 1st.
func DefaultSelectedDate(monthKey string, now time.Time) string {
	if monthKey == MonthKey(now) {
		return DateKey(now)
	}
	y, m, ok := ParseMonthKey(monthKey)
	if !ok {
		return DateKey(now)
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, KST).Format(dateLayout)
}

// MonthKeyOfDate returns the YYYY-MM prefix of a date key.
func MonthKeyOfDate(dateKey string) (string, bool) {
	t, ok := ParseDateKey(dateKey)
	if !ok {
		return "", false
	}
	return t.Format(monthLayout), true
}

// WeeklyCutoff is the weekly reset key `months` months before now.
func WeeklyCutoff(now time.Time, months int) string {
	return WeeklyResetKey(now.In(KST).AddDate(0, -months, 0))
}

// MonthlyCutoff is the monthly reset key `months` months before now.
func MonthlyCutoff(now time.Time, months int) string {
	local := now.In(KST)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, KST)
	return first.AddDate(0, -months, 0).Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
