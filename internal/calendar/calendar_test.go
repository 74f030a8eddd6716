package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func TestIsSameCalendarDay(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"identical", day(2024, 5, 1, 10, 0), day(2024, 5, 1, 10, 0), true},
		{"start and end of day", day(2024, 5, 1, 0, 0), day(2024, 5, 1, 23, 59), true},
		{"across midnight", day(2024, 5, 1, 23, 59), day(2024, 5, 2, 0, 1), false},
		{"same day different month", day(2024, 5, 1, 9, 0), day(2024, 6, 1, 9, 0), false},
		{"same day different year", day(2023, 5, 1, 9, 0), day(2024, 5, 1, 9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSameCalendarDay(tt.a, tt.b))
		})
	}
}

func TestIsNextCalendarDay(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"a minute past midnight", day(2024, 5, 1, 23, 59), day(2024, 5, 2, 0, 1), true},
		{"almost 48 hours later", day(2024, 5, 1, 0, 1), day(2024, 5, 2, 23, 59), true},
		{"month rollover", day(2024, 1, 31, 12, 0), day(2024, 2, 1, 8, 0), true},
		{"leap day", day(2024, 2, 28, 12, 0), day(2024, 2, 29, 8, 0), true},
		{"year rollover", day(2023, 12, 31, 22, 0), day(2024, 1, 1, 1, 0), true},
		{"same day", day(2024, 5, 1, 8, 0), day(2024, 5, 1, 20, 0), false},
		{"two day gap", day(2024, 5, 1, 23, 0), day(2024, 5, 3, 0, 30), false},
		{"b before a", day(2024, 5, 2, 8, 0), day(2024, 5, 1, 8, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNextCalendarDay(tt.a, tt.b))
		})
	}
}

func TestRelate(t *testing.T) {
	prior := day(2024, 5, 1, 18, 0)

	assert.Equal(t, SameDay, Relate(prior, day(2024, 5, 1, 23, 0)))
	assert.Equal(t, NextDay, Relate(prior, day(2024, 5, 2, 6, 0)))
	assert.Equal(t, Other, Relate(prior, day(2024, 5, 3, 6, 0)))
	assert.Equal(t, Other, Relate(prior, day(2024, 4, 30, 6, 0)))
}

func TestRelateIsRollingWindowIndependent(t *testing.T) {
	// 2 minutes apart but on different dates
	assert.Equal(t, NextDay, Relate(day(2024, 5, 1, 23, 59), day(2024, 5, 2, 0, 1)))
	// 47 hours apart but only one date apart
	assert.Equal(t, NextDay, Relate(day(2024, 5, 1, 0, 30), day(2024, 5, 2, 23, 30)))
}

func TestIsToday(t *testing.T) {
	now := day(2024, 5, 1, 12, 0)
	morning := day(2024, 5, 1, 6, 0)
	yesterday := day(2024, 4, 30, 23, 0)

	assert.False(t, IsToday(nil, now))
	assert.True(t, IsToday(&morning, now))
	assert.False(t, IsToday(&yesterday, now))
}

func TestIsSameCalendarDay_UsesLocalDate(t *testing.T) {
	local := day(2024, 5, 1, 12, 0)
	// Same instant expressed in UTC must compare equal
	assert.True(t, IsSameCalendarDay(local.UTC(), local))
}

func TestRelationString(t *testing.T) {
	assert.Equal(t, "same_day", SameDay.String())
	assert.Equal(t, "next_day", NextDay.String())
	assert.Equal(t, "other", Other.String())
}
