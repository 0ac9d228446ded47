package util

import "time"

// MillisToTime converts epoch milliseconds to a UTC time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TimeToMillis converts t to epoch milliseconds.
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}
