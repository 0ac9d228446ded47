package resolution

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimestamps() []int64 {
	rng := rand.New(rand.NewSource(7))
	samples := []int64{
		0, 1, 59_999, 60_000, 70_000, -1, -60_000, -60_001,
		weekReferenceMs, weekReferenceMs - 1, weekMs, 1709510400000, 1709510399999,
	}
	for i := 0; i < 500; i++ {
		samples = append(samples, rng.Int63n(4_000_000_000_000)-1_000_000_000_000)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples
}

func TestBucketFor_Properties(t *testing.T) {
	samples := sampleTimestamps()

	for _, r := range All() {
		t.Run(r.Name(), func(t *testing.T) {
			var prevStart int64
			for i, ts := range samples {
				start, end, err := BucketFor(ts, r)
				require.NoError(t, err)

				assert.LessOrEqual(t, start, ts)
				assert.Less(t, ts, end)
				assert.Equal(t, r.Width(), end-start)

				if r == Week {
					assert.Zero(t, floorMod(start-weekReferenceMs, weekMs), "week start %d", start)
				} else {
					assert.Zero(t, floorMod(start, r.Width()), "start %d", start)
				}

				again, againEnd, err := BucketFor(ts, r)
				require.NoError(t, err)
				assert.Equal(t, start, again)
				assert.Equal(t, end, againEnd)

				if i > 0 {
					assert.LessOrEqual(t, prevStart, start)
				}
				prevStart = start
			}
		})
	}
}

func TestBucketFor_KnownBoundaries(t *testing.T) {
	testCases := []struct {
		name          string
		timestamp     int64
		resolution    Resolution
		expectedStart int64
		expectedEnd   int64
	}{
		{name: "minute at epoch", timestamp: 0, resolution: Minute, expectedStart: 0, expectedEnd: 60_000},
		{name: "minute last ms", timestamp: 59_999, resolution: Minute, expectedStart: 0, expectedEnd: 60_000},
		{name: "minute next bucket", timestamp: 70_000, resolution: Minute, expectedStart: 60_000, expectedEnd: 120_000},
		{name: "minute negative", timestamp: -1, resolution: Minute, expectedStart: -60_000, expectedEnd: 0},
		{name: "fifteen minutes", timestamp: 16 * minuteMs, resolution: FifteenMinutes, expectedStart: 15 * minuteMs, expectedEnd: 30 * minuteMs},
		{name: "hour", timestamp: 1709296200000, resolution: Hour, expectedStart: 1709294400000, expectedEnd: 1709298000000},
		{name: "four hours", timestamp: 1709296200000, resolution: FourHours, expectedStart: 1709294400000, expectedEnd: 1709308800000},
		{name: "day", timestamp: 1709296200000, resolution: Day, expectedStart: 1709251200000, expectedEnd: 1709337600000},
		{name: "week starts monday", timestamp: 1709296200000, resolution: Week, expectedStart: 1708905600000, expectedEnd: 1709510400000},
		{name: "week on monday boundary", timestamp: 1709510400000, resolution: Week, expectedStart: 1709510400000, expectedEnd: 1710115200000},
		{name: "week before reference", timestamp: 0, resolution: Week, expectedStart: weekReferenceMs - weekMs, expectedEnd: weekReferenceMs},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := BucketFor(tc.timestamp, tc.resolution)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStart, start)
			assert.Equal(t, tc.expectedEnd, end)
		})
	}
}

func TestBucketFor_WeekIsMonday(t *testing.T) {
	for _, ts := range sampleTimestamps() {
		start, _, err := Week.BucketFor(ts)
		require.NoError(t, err)

		startTime := time.UnixMilli(start).UTC()
		assert.Equal(t, time.Monday, startTime.Weekday())
		assert.Zero(t, startTime.Hour())
	}
}

func TestBucketFor_InvalidResolution(t *testing.T) {
	for _, r := range []Resolution{0, Week + 1, -3} {
		_, _, err := BucketFor(1000, r)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.InvalidResolution))
	}
}

func TestParse(t *testing.T) {
	for _, r := range All() {
		parsed, err := Parse(r.Name())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := Parse("5m")
	assert.True(t, errors.IsCode(err, errors.InvalidResolution))

	assert.Equal(t, []string{"1m", "15m", "1h", "4h", "1d", "1w"}, Names())
	assert.Equal(t, "Resolution(9)", Resolution(9).String())
	assert.Equal(t, time.Hour*4, FourHours.Duration())
}

func TestResolution_BucketTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 37, 12, 0, time.UTC)

	bucket, err := FifteenMinutes.BucketTime(ts)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), bucket)

	assert.True(t, Hour.SameBucket(ts.UnixMilli(), ts.Add(20*time.Minute).UnixMilli()))
	assert.False(t, Minute.SameBucket(ts.UnixMilli(), ts.Add(time.Minute).UnixMilli()))

	start := bucket.UnixMilli()
	assert.True(t, FifteenMinutes.Contains(start, ts.UnixMilli()))
	assert.False(t, FifteenMinutes.Contains(start, start+FifteenMinutes.Width()))
	assert.False(t, Resolution(0).Contains(0, 0))
}

func TestConfig_Resolutions(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected []Resolution
		wantErr  bool
	}{
		{
			name:     "all enabled",
			config:   Config{EnabledResolutions: []string{"1m", "15m", "1h", "4h", "1d", "1w"}},
			expected: All(),
		},
		{
			name:     "duplicates removed",
			config:   Config{EnabledResolutions: []string{"1h", "1m", "1h"}},
			expected: []Resolution{Hour, Minute},
		},
		{
			name:    "unknown name",
			config:  Config{EnabledResolutions: []string{"1m", "2h"}},
			wantErr: true,
		},
		{
			name:    "empty",
			config:  Config{},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.config.Resolutions()
			if tc.wantErr {
				assert.True(t, errors.IsCode(err, errors.InvalidResolution))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func TestResolution_Text(t *testing.T) {
	text, err := FourHours.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "4h", string(text))

	var r Resolution
	require.NoError(t, r.UnmarshalText([]byte("1w")))
	assert.Equal(t, Week, r)

	assert.Error(t, r.UnmarshalText([]byte("3d")))
	_, err = Resolution(0).MarshalText()
	assert.Error(t, err)
}
