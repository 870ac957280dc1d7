package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestClassifySession_Boundaries(t *testing.T) {
	cases := map[string]Session{
		"00:00": Morning,
		"10:00": Morning,
		"16:59": Morning,
		"17:00": Evening,
		"19:30": Evening,
		"23:59": Evening,
	}
	for in, want := range cases {
		got, err := ClassifySession(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestClassifySession_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "7:30", "24:00", "12:60", "12-30", "noon"} {
		_, err := ClassifySession(in)
		assert.ErrorIs(t, err, ErrInvalidTime, in)
	}
}

func TestIsOpeningHours_Weekday(t *testing.T) {
	monday := mustDate(t, "2025-03-10")
	assert.Equal(t, time.Monday, monday.Weekday())

	assert.True(t, IsOpeningHours(monday, "10:00"))
	assert.True(t, IsOpeningHours(monday, "16:00"))
	assert.True(t, IsOpeningHours(monday, "19:30"))
	assert.True(t, IsOpeningHours(monday, "23:30"))

	assert.False(t, IsOpeningHours(monday, "09:30"))
	assert.False(t, IsOpeningHours(monday, "16:30"))
	assert.False(t, IsOpeningHours(monday, "17:00"))
	assert.False(t, IsOpeningHours(monday, "10:15"))
}

func TestIsOpeningHours_SundayEveningClosed(t *testing.T) {
	sunday := mustDate(t, "2025-03-09")
	assert.Equal(t, time.Sunday, sunday.Weekday())

	for _, slot := range SlotTimes {
		h, err := Hour(slot)
		require.NoError(t, err)
		assert.Equal(t, h < EveningStartHour, IsOpeningHours(sunday, slot), slot)
	}
}

func TestSlotsFor(t *testing.T) {
	sunday := mustDate(t, "2025-03-09")
	saturday := mustDate(t, "2025-03-08")

	assert.Empty(t, SlotsFor(sunday, Evening))
	assert.False(t, SessionOffered(sunday, Evening))
	assert.Len(t, SlotsFor(sunday, Morning), 13)
	assert.Len(t, SlotsFor(saturday, Evening), 9)
	assert.Equal(t, "19:30", SlotsFor(saturday, Evening)[0])
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2025-3-10")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("2025-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("0001-01-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("0999-12-31")
	assert.ErrorIs(t, err, ErrInvalidDate)

	d, err := ParseDate("1000-01-01")
	assert.NoError(t, err)
	assert.Equal(t, MinYear, d.Year())

	d, err = ParseDate("2025-03-10")
	assert.NoError(t, err)
	assert.Equal(t, 10, d.Day())
}

func TestParseSession(t *testing.T) {
	s, err := ParseSession("evening")
	assert.NoError(t, err)
	assert.Equal(t, Evening, s)

	_, err = ParseSession("lunch")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
