package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category partitions a user's rows by kind of checklist blob.
type Category string

const (
	CategoryWeeklyBoss  Category = "weekly_boss"
	CategoryMonthlyBoss Category = "monthly_boss"
	CategoryMemo        Category = "memo"
	CategoryCalendar    Category = "calendar"
)

// WeeklyCadence and MonthlyCadence group categories by retention cutoff.
var (
	WeeklyCadence  = []Category{CategoryWeeklyBoss, CategoryMemo}
	MonthlyCadence = []Category{CategoryMonthlyBoss, CategoryCalendar}
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWeeklyBoss, CategoryMonthlyBoss, CategoryMemo, CategoryCalendar:
		return true
	default:
		return false
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %q", s)
	}
	return c, nil
}

// Row is the unit of storage, unique per (UserID, Category, PeriodKey).
type Row struct {
	UserID    string          `json:"userId"`
	Category  Category        `json:"category"`
	PeriodKey string          `json:"periodKey"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
