package model

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month selects a calendar month, written YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "2024-01".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether d falls in the same calendar year and month.
func (m Month) Contains(d time.Time) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}
