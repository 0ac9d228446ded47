package resolution

import (
	"fmt"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
)

// Resolution is a fixed candle width.
type Resolution int

// Supported resolutions. The zero value is deliberately invalid.
const (
	Minute Resolution = iota + 1
	FifteenMinutes
	Hour
	FourHours
	Day
	Week
)

const (
	minuteMs = int64(time.Minute / time.Millisecond)
	dayMs    = 24 * 60 * minuteMs
	weekMs   = 7 * dayMs

	// weekReferenceMs is Monday 1970-01-05 00:00:00 UTC. Week buckets are
	// whole multiples of seven days from this instant.
	weekReferenceMs = 4 * dayMs
)

type bucketWidth struct {
	name  string
	width int64
}

var widths = map[Resolution]bucketWidth{
	Minute:         {name: "1m", width: minuteMs},
	FifteenMinutes: {name: "15m", width: 15 * minuteMs},
	Hour:           {name: "1h", width: 60 * minuteMs},
	FourHours:      {name: "4h", width: 240 * minuteMs},
	Day:            {name: "1d", width: dayMs},
	Week:           {name: "1w", width: weekMs},
}

var all = []Resolution{Minute, FifteenMinutes, Hour, FourHours, Day, Week}

// registry for lookup by name
var registry = make(map[string]Resolution, len(all))

func init() {
	for _, r := range all {
		registry[widths[r].name] = r
	}
}

// All returns every supported resolution from the narrowest to the widest.
func All() []Resolution {
	out := make([]Resolution, len(all))
	copy(out, all)
	return out
}

// Parse returns the resolution for a name such as "15m" or "1w".
func Parse(name string) (Resolution, error) {
	r, ok := registry[name]
	if !ok {
		return 0, invalid(fmt.Sprintf("unsupported resolution: %q", name))
	}
	return r, nil
}

// Names returns the names of every supported resolution.
func Names() []string {
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, widths[r].name)
	}
	return names
}

// IsValid reports whether r is one of the supported kinds.
func (r Resolution) IsValid() bool {
	_, ok := widths[r]
	return ok
}

// Name returns the short name of r, e.g. "4h".
func (r Resolution) Name() string {
	return widths[r].name
}

// String implements fmt.Stringer.
func (r Resolution) String() string {
	if !r.IsValid() {
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
	return r.Name()
}

// Width returns the bucket width in milliseconds, 0 for an invalid value.
func (r Resolution) Width() int64 {
	return widths[r].width
}

// Duration returns the bucket width as a time.Duration.
func (r Resolution) Duration() time.Duration {
	return time.Duration(r.Width()) * time.Millisecond
}

// BucketFor returns the half-open bucket [start, end) in epoch milliseconds
// containing timestamp.
func BucketFor(timestamp int64, r Resolution) (start, end int64, err error) {
	s, ok := widths[r]
	if !ok {
		return 0, 0, invalid(fmt.Sprintf("unsupported resolution: %d", int(r)))
	}

	offset := int64(0)
	if r == Week {
		offset = weekReferenceMs
	}

	start = floorDiv(timestamp-offset, s.width)*s.width + offset
	return start, start + s.width, nil
}

// BucketFor is the method form of the package level BucketFor.
func (r Resolution) BucketFor(timestamp int64) (start, end int64, err error) {
	return BucketFor(timestamp, r)
}

// BucketTime returns the bucket start for t as a UTC time.
func (r Resolution) BucketTime(t time.Time) (time.Time, error) {
	start, _, err := BucketFor(t.UnixMilli(), r)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(start).UTC(), nil
}

// SameBucket reports whether both timestamps fall into the same bucket.
func (r Resolution) SameBucket(t1, t2 int64) bool {
	s1, _, err1 := BucketFor(t1, r)
	s2, _, err2 := BucketFor(t2, r)
	return err1 == nil && err2 == nil && s1 == s2
}

// Contains reports whether timestamp lies in the bucket that begins at start.
func (r Resolution) Contains(start, timestamp int64) bool {
	return r.IsValid() && start <= timestamp && timestamp < start+r.Width()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func invalid(message string) error {
	return errors.New(errors.InvalidResolution, message, "resolution")
}

// MarshalText encodes r by name so JSON payloads read "1h" rather than a number.
func (r Resolution) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, invalid(fmt.Sprintf("unsupported resolution: %d", int(r)))
	}
	return []byte(r.Name()), nil
}

// UnmarshalText decodes a resolution name.
func (r *Resolution) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
