// Copyright (c) 2024 Neomantra Corp

package mdcat

import (
	"strings"
	"time"
)

// TrimNullBytes removes trailing nulls from a byte slice and returns a string.
func TrimNullBytes(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// TimestampToSecNanos converts a nanosecond UNIX timestamp to seconds and nanoseconds.
func TimestampToSecNanos(tsNanos uint64) (int64, int64) {
	secs := int64(tsNanos / 1e9)
	nano := int64(tsNanos) - int64(secs*1e9)
	return secs, nano
}

// TimestampToTime converts a nanosecond UNIX timestamp (ts_event/ts_init) to a time.Time.
func TimestampToTime(tsNanos uint64) time.Time {
	secs, nano := TimestampToSecNanos(tsNanos)
	return time.Unix(secs, nano)
}

// TimeToYMD returns the YYYYMMDD for the time.Time in that Time's location.
// A zero time returns a 0 value.
func TimeToYMD(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	return uint32(10000*t.Year() + 100*int(t.Month()) + t.Day())
}

// YMDToTime converts a YYYYMMDD int to a time.Time at midnight in the given location.
func YMDToTime(ymd int, loc *time.Location) time.Time {
	if ymd == 0 {
		return time.Time{}
	}
	year := ymd / 10000
	month := (ymd / 100) % 100
	day := ymd % 100
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// unsafePartitionChars is the set of characters replaced with '-' when
// sanitizing a partition key for filesystem safety, per the canonical
// SanitizedKey grammar.
const unsafePartitionChars = "/\\: "

// SanitizePartitionKey replaces any unsafe filesystem character in key with
// '-'. The caller is responsible for recording the sanitized->original
// mapping in the partition's mapping sidecar.
func SanitizePartitionKey(key string) string {
	if strings.IndexAny(key, unsafePartitionChars) == -1 {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if strings.ContainsRune(unsafePartitionChars, r) {
			b.WriteByte('-')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
