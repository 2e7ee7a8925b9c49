package period

import "time"

const (
	calendarRows = 6
	calendarCols = 7
)

// Cell is one day of a month grid.
type Cell struct {
	DateKey        string `json:"dateKey"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
}

// Matrix is a 6-week grid; each row starts on ResetWeekday.
type Matrix [calendarRows][calendarCols]Cell

// CalendarMatrix builds the grid for monthKey, marking the cell equal to DateKey(now) as today.
// A malformed monthKey renders the current month.
func CalendarMatrix(monthKey string, now time.Time) Matrix {
	y, m, ok := ParseMonthKey(monthKey)
	if !ok {
		local := now.In(KST)
		y, m = local.Year(), int(local.Month())
	}
	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, KST)
	lead := (int(first.Weekday()) - int(ResetWeekday) + 7) % 7
	cursor := first.AddDate(0, 0, -lead)
	today := DateKey(now)

	var grid Matrix
	for row := 0; row < calendarRows; row++ {
		for col := 0; col < calendarCols; col++ {
			key := cursor.Format(dateLayout)
			grid[row][col] = Cell{
				DateKey:        key,
				IsCurrentMonth: cursor.Month() == first.Month() && cursor.Year() == first.Year(),
				IsToday:        key == today,
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return grid
}

// Cells flattens the grid row by row.
func (m Matrix) Cells() []Cell {
	out := make([]Cell, 0, calendarRows*calendarCols)
	for _, row := range m {
		out = append(out, row[:]...)
	}
	return out
}
