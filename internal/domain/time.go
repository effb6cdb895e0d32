package domain

import "time"

// ISOMillis is the UTC ISO-8601 layout clients expect for timestamps.
const ISOMillis = "2006-01-02T15:04:05.000Z"

func Timestamp(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}
