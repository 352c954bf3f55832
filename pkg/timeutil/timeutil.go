// Package timeutil provides timezone utilities for Western Indonesia Time (WIB, UTC+7).
// Enrollment dates are calendar dates in WIB; snapshot timestamps are ISO-8601 in UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"sync"
	"time"
)

// JakartaTZ is the WIB timezone (UTC+7, no DST).
var JakartaTZ = time.FixedZone("Asia/Jakarta", 7*60*60)

// Common date/time formats.
const (
	// FormatDate is the calendar date format (YYYY-MM-DD) used for tanggalMasuk.
	FormatDate = "2006-01-02"
	// FormatISO8601 is the timestamp format written into snapshots and exports.
	FormatISO8601 = "2006-01-02T15:04:05.000Z07:00"
)

// Clock abstracts the current time so that snapshot timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a preset time that can be advanced manually.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock creates a FixedClock pinned at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

// Now returns the pinned time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the pinned time forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ToJakarta converts a time to WIB.
func ToJakarta(t time.Time) time.Time {
	return t.In(JakartaTZ)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in WIB.
func FormatDateStr(t time.Time) string {
	return ToJakarta(t).Format(FormatDate)
}

// FormatISO formats a time as an ISO-8601 UTC timestamp with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(FormatISO8601)
}

// ParseISO parses an ISO-8601 timestamp. RFC 3339 without fractions is accepted as well.
func ParseISO(value string) (time.Time, error) {
	t, err := time.Parse(FormatISO8601, value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// ParseDateJakarta parses a date string (YYYY-MM-DD) in WIB.
func ParseDateJakarta(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, JakartaTZ)
}

// IsCalendarDate reports whether value is a valid YYYY-MM-DD date.
func IsCalendarDate(value string) bool {
	_, err := ParseDateJakarta(value)
	return err == nil
}

// Today returns the current WIB calendar date for the given clock.
func Today(c Clock) string {
	if c == nil {
		c = SystemClock{}
	}
	return FormatDateStr(c.Now())
}
