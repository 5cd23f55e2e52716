package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	// 2026-01-07 is a Wednesday.
	assert.Equal(t, date(2026, time.January, 5), StartOfWeek(date(2026, time.January, 7)))
	// Monday maps to itself.
	assert.Equal(t, date(2026, time.January, 5), StartOfWeek(date(2026, time.January, 5)))
	// Sunday still belongs to the week that started the previous Monday.
	assert.Equal(t, date(2026, time.January, 5), StartOfWeek(date(2026, time.January, 11)))
}

func TestWeekDates(t *testing.T) {
	dates := WeekDates(date(2026, time.January, 7))
	require.Len(t, dates, 7)
	assert.Equal(t, date(2026, time.January, 5), dates[0])
	assert.Equal(t, date(2026, time.January, 11), dates[6])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i], "dates must be consecutive")
	}
}

func TestWeekDates_CrossesMonthBoundary(t *testing.T) {
	// 2026-02-01 is a Sunday; its week starts in January.
	dates := WeekDates(date(2026, time.February, 1))
	assert.Equal(t, date(2026, time.January, 26), dates[0])
	assert.Equal(t, date(2026, time.February, 1), dates[6])
}

func TestMonthDates(t *testing.T) {
	dates := MonthDates(2026, time.February)
	require.Len(t, dates, 28)
	assert.Equal(t, date(2026, time.February, 1), dates[0])
	assert.Equal(t, date(2026, time.February, 28), dates[27])

	leap := MonthDates(2028, time.February)
	assert.Len(t, leap, 29)
}

func TestParseDate(t *testing.T) {
	fallback := date(2026, time.March, 1)

	assert.Equal(t, date(2026, time.January, 5), ParseDate("2026-01-05", fallback))
	assert.Equal(t, fallback, ParseDate("", fallback))
	assert.Equal(t, fallback, ParseDate("05/01/2026", fallback))
}

func TestParseDateStrict(t *testing.T) {
	d, err := ParseDateStrict("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 5), d)

	_, err = ParseDateStrict("not-a-date")
	assert.Error(t, err)
}

func TestDateOf_StripsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	in := time.Date(2026, time.January, 5, 23, 45, 0, 0, loc)
	assert.Equal(t, date(2026, time.January, 5), DateOf(in))
}

func TestParseRoutineRef(t *testing.T) {
	id, ok := ParseRoutineRef("ROUTINE:5f1a2b3c4d5e6f7a8b9c0d1e")
	require.True(t, ok)
	assert.Equal(t, "5f1a2b3c4d5e6f7a8b9c0d1e", id.Hex())

	_, ok = ParseRoutineRef("ROUTINE:nope")
	assert.False(t, ok)
	_, ok = ParseRoutineRef("just some text")
	assert.False(t, ok)
	_, ok = ParseRoutineRef("")
	assert.False(t, ok)
}
