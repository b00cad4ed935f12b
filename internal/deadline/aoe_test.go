package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAoE(t *testing.T) {
	got, err := NormalizeAoE("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 11, 11, 59, 59, 999_000_000, time.UTC), got)
}

func TestNormalizeAoE_UTCDateIsNextDay(t *testing.T) {
	cases := map[string]string{
		"2024-05-10": "2024-05-11",
		"2024-02-28": "2024-02-29",
		"2024-02-29": "2024-03-01",
		"2023-02-28": "2023-03-01",
		"2024-12-31": "2025-01-01",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := NormalizeAoE(in)
			require.NoError(t, err)
			assert.Equal(t, want, got.UTC().Format(DateLayout))
			assert.Equal(t, in, AoEDay(got), "AoE day must recover the civil date")
		})
	}
}

func TestNormalizeAoE_Failures(t *testing.T) {
	_, err := NormalizeAoE("")
	assert.ErrorIs(t, err, ErrNoDate)

	_, err = NormalizeAoE("   ")
	assert.ErrorIs(t, err, ErrNoDate)

	_, err = NormalizeAoE("not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NormalizeAoE("2024-13-40")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeAoE_IndependentOfLocalZone(t *testing.T) {
	want, err := NormalizeAoE("2024-05-10")
	require.NoError(t, err)

	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	for _, offset := range []int{-11, -3, 0, 5, 9, 14} {
		time.Local = time.FixedZone("test", offset*3600)
		got, err := NormalizeAoE("2024-05-10")
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "offset %d", offset)
	}
}

func TestNormalizeAoE_AcceptsTimestamps(t *testing.T) {
	want, _ := NormalizeAoE("2024-05-10")

	got, err := NormalizeAoE("2024-05-10T22:00:00-07:00")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = NormalizeAoE("2024/05/10")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, want, NormalizeAoETime(time.Date(2024, 5, 10, 23, 30, 0, 0, tokyo)))
}

func TestFormatAoEDate(t *testing.T) {
	assert.Equal(t, "05/10/2024", FormatAoEDate("2024-05-10"))
	assert.Equal(t, "TBD", FormatAoEDate(""))
	assert.Equal(t, "TBD", FormatAoEDate("soon"))
}

func TestAoEToday(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
		aoeToday(time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		aoeToday(time.Date(2024, 5, 10, 11, 59, 0, 0, time.UTC)))
}
