package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	warsaw, _  = time.LoadLocation("Europe/Warsaw")
	newYork, _ = time.LoadLocation("America/New_York")
)

func TestToWireInstant(t *testing.T) {
	t.Run("local input gets viewer offset", func(t *testing.T) {
		got, err := ToWireInstant("2024-01-01T08:00", warsaw)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01T08:00:00+01:00", got)
	})
	t.Run("RFC3339 input keeps its own offset", func(t *testing.T) {
		got, err := ToWireInstant("2024-06-01T09:30:00-07:00", warsaw)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01T09:30:00-07:00", got)
	})
	t.Run("garbage fails", func(t *testing.T) {
		_, err := ToWireInstant("tomorrow-ish", warsaw)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
	t.Run("empty fails", func(t *testing.T) {
		_, err := ToWireInstant("", warsaw)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestSplitForEditing(t *testing.T) {
	tests := []struct {
		name    string
		instant time.Time
		loc     *time.Location
		want    EditFields
	}{
		{"afternoon", time.Date(2024, 2, 1, 14, 30, 0, 0, warsaw), warsaw, EditFields{"2024-02-01", "02", "30", PM}},
		{"midnight", time.Date(2024, 2, 1, 0, 5, 0, 0, warsaw), warsaw, EditFields{"2024-02-01", "12", "00", AM}},
		{"noon", time.Date(2024, 2, 1, 12, 50, 0, 0, warsaw), warsaw, EditFields{"2024-02-01", "12", "45", PM}},
		{"foreign offset rendered in viewer zone", time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC), newYork, EditFields{"2024-06-01", "07", "00", PM}},
		{"foreign offset crosses midnight", time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC), warsaw, EditFields{"2024-06-02", "01", "00", AM}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitForEditing(tt.instant, tt.loc))
		})
	}
}

func TestComposeFromEditing(t *testing.T) {
	tests := []struct {
		name    string
		in      EditFields
		want    string
		wantErr bool
	}{
		{"pm", EditFields{"2024-02-01", "02", "30", PM}, "2024-02-01T14:30", false},
		{"12 am is midnight", EditFields{"2024-02-01", "12", "00", AM}, "2024-02-01T00:00", false},
		{"12 pm is noon", EditFields{"2024-02-01", "12", "15", PM}, "2024-02-01T12:15", false},
		{"lower case meridiem", EditFields{"2024-02-29", "11", "45", "pm"}, "2024-02-29T23:45", false},
		{"hour out of range", EditFields{"2024-02-01", "13", "00", PM}, "", true},
		{"bad date", EditFields{"2024-02-30", "01", "00", AM}, "", true},
		{"bad meridiem", EditFields{"2024-02-01", "01", "00", "XM"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComposeFromEditing(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitComposeRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		instant := time.Date(2024, 3, 31, h, 45, 0, 0, time.UTC)
		got, err := ComposeFromEditing(SplitForEditing(instant, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, instant.Format(LocalLayout), got)
	}
}

func TestExclusiveInclusiveEndDate(t *testing.T) {
	tests := []struct {
		inclusive string
		exclusive string
	}{
		{"2024-03-10", "2024-03-11"},
		{"2024-03-31", "2024-04-01"}, // DST starts in Europe on this day
		{"2024-03-09", "2024-03-10"}, // DST starts in the US on the next day
		{"2024-10-27", "2024-10-28"},
		{"2024-02-28", "2024-02-29"},
		{"2024-02-29", "2024-03-01"},
		{"2023-02-28", "2023-03-01"},
		{"2023-12-31", "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.inclusive, func(t *testing.T) {
			got, err := ToExclusiveEndDate(tt.inclusive)
			require.NoError(t, err)
			assert.Equal(t, tt.exclusive, got)

			back, err := ToInclusiveEndDate(got)
			require.NoError(t, err)
			assert.Equal(t, tt.inclusive, back)
		})
	}

	_, err := ToExclusiveEndDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExclusiveInclusiveRoundTripEveryDayOfLeapYear(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		date := d.AddDate(0, 0, i).Format(DateLayout)
		exclusive, err := ToExclusiveEndDate(date)
		require.NoError(t, err)
		inclusive, err := ToInclusiveEndDate(exclusive)
		require.NoError(t, err)
		assert.Equal(t, date, inclusive)
	}
}

func TestNextHalfHour(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), NextHalfHour(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), NextHalfHour(time.Date(2024, 1, 1, 10, 29, 59, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), NextHalfHour(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), NextHalfHour(time.Date(2024, 1, 1, 23, 45, 0, 0, time.UTC)))
}

func TestCoerceAllDayToggle(t *testing.T) {
	now := time.Date(2024, 2, 1, 9, 10, 0, 0, warsaw)

	t.Run("turning on truncates to dates", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{Start: "2024-02-01T14:30", End: "2024-02-01T15:00"}, true, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-01", End: "2024-02-01", AllDay: true}, got)
	})
	t.Run("turning on with empty values falls back to today", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{}, true, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-01", End: "2024-02-01", AllDay: true}, got)
	})
	t.Run("turning on with empty end uses start", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{Start: "2024-02-05T08:00"}, true, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-05", End: "2024-02-05", AllDay: true}, got)
	})
	t.Run("turning off expands bare dates to the next half hour", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{Start: "2024-02-05", End: "2024-02-05", AllDay: true}, false, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-05T09:30", End: "2024-02-05T10:00"}, got)
	})
	t.Run("turning off keeps a multi-day end date", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{Start: "2024-02-05", End: "2024-02-07", AllDay: true}, false, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-05T09:30", End: "2024-02-07T10:00"}, got)
	})
	t.Run("turning off leaves timed values alone", func(t *testing.T) {
		got := CoerceAllDayToggle(Span{Start: "2024-02-05T07:00", End: "2024-02-05T08:00"}, false, now, 30*time.Minute)
		assert.Equal(t, Span{Start: "2024-02-05T07:00", End: "2024-02-05T08:00"}, got)
	})
}

func TestAutoAdjustEnd(t *testing.T) {
	assert.Equal(t, "2024-01-01T09:00", AutoAdjustEnd("2024-01-01T08:00", "2024-01-01T08:00", time.Hour))
	assert.Equal(t, "2024-01-02T00:30", AutoAdjustEnd("2024-01-01T23:30", "2024-01-01T23:45", time.Hour))
	assert.Equal(t, "2024-03-01T00:15", AutoAdjustEnd("2024-02-29T23:15", "", time.Hour))
	assert.Equal(t, "keep", AutoAdjustEnd("nope", "keep", time.Hour))
	// a start carrying seconds still moves the end
	assert.Equal(t, "2024-01-01T09:00", AutoAdjustEnd("2024-01-01T08:00:30", "2024-01-01T08:30", time.Hour))
}

func TestDatePart(t *testing.T) {
	assert.Equal(t, "2024-02-01", DatePart("2024-02-01T14:30"))
	assert.Equal(t, "2024-02-01", DatePart("2024-02-01"))
	assert.Equal(t, "", DatePart(""))
	assert.Equal(t, "", DatePart("02/01/2024"))
}
