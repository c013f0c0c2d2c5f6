package models

import "time"

// Category is the closed set of expense categories.
type Category string

const (
	CategoryGroceries   Category = "Groceries"
	CategoryLeisure     Category = "Leisure"
	CategoryElectronics Category = "Electronics"
	CategoryUtilities   Category = "Utilities"
	CategoryClothing    Category = "Clothing"
	CategoryHealth      Category = "Health"
	CategoryOthers      Category = "Others"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGroceries, CategoryLeisure, CategoryElectronics,
		CategoryUtilities, CategoryClothing, CategoryHealth, CategoryOthers:
		return true
	}
	return false
}

type Expense struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Amount      float64   `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	Category    Category  `db:"category" json:"category"`
	Date        time.Time `db:"date" json:"date"`
}

// TimeFilter selects a trailing window when listing expenses.
type TimeFilter string

const (
	FilterAll        TimeFilter = "all"
	FilterPastWeek   TimeFilter = "past_week"
	FilterPastMonth  TimeFilter = "past_month"
	FilterLast3Month TimeFilter = "last_3_months"
	FilterCustom     TimeFilter = "custom"
)

func (f TimeFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPastWeek, FilterPastMonth, FilterLast3Month, FilterCustom:
		return true
	}
	return false
}

// Cutoff returns the inclusive lower bound for expense dates. ok is
// false when the filter spans everything. customDays is only consulted
// for FilterCustom.
func (f TimeFilter) Cutoff(now time.Time, customDays int) (cutoff time.Time, ok bool) {
	var days int
	switch f {
	case FilterPastWeek:
		days = 7
	case FilterPastMonth:
		days = 30
	case FilterLast3Month:
		days = 90
	case FilterCustom:
		days = customDays
	default:
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}
