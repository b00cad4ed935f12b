// Package deadline turns conference records into the time-resolved values the
// views need: AoE deadline instants, expanded rolling cycles, per-day calendar
// events, sorted lists and countdowns.
//
// Every function is pure. The current instant is always passed in by the
// caller and captured once per logical operation.
package deadline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	appLog "csconfs/internal/log"
)

// DateLayout is the civil date format used throughout the data files.
const DateLayout = "2006-01-02"

var (
	// ErrNoDate is returned for an empty date value.
	ErrNoDate = errors.New("deadline: no date")
	// ErrInvalidDate is returned for a value that is not a recognizable date.
	ErrInvalidDate = errors.New("deadline: invalid date")
)

// aoeZone is "Anywhere on Earth", the last time zone to leave any given day.
var aoeZone = time.FixedZone("AoE", -12*60*60)

// civilLayouts are tried in order by ParseCivilDate.
var civilLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// ParseCivilDate parses a civil date and returns midnight UTC of that date.
// Timestamps are reduced to the calendar date in their own offset.
func ParseCivilDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoDate
	}
	for _, layout := range civilLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return civil(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NormalizeAoE returns the instant at which an AoE deadline on the given civil
// date expires: 23:59:59.999 UTC-12, which is 11:59:59.999 UTC on the next
// day. The result does not depend on the process time zone.
func NormalizeAoE(date string) (time.Time, error) {
	d, err := ParseCivilDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return aoeExpiry(d), nil
}

// NormalizeAoETime is NormalizeAoE for a date value; only its calendar date
// in its own location is used.
func NormalizeAoETime(t time.Time) time.Time {
	return aoeExpiry(civil(t))
}

// AoEDay returns the AoE calendar day (YYYY-MM-DD) an instant falls on. For an
// expiry produced by NormalizeAoE it is the civil date that was normalized.
func AoEDay(instant time.Time) string {
	return instant.In(aoeZone).Format(DateLayout)
}

// FormatAoEDate renders a deadline for display as MM/DD/YYYY of its AoE day,
// or "TBD" when the date is missing or unusable.
func FormatAoEDate(date string) string {
	expiry, err := NormalizeAoE(date)
	if err != nil {
		return "TBD"
	}
	return expiry.In(aoeZone).Format("01/02/2006")
}

func aoeExpiry(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999_000_000, aoeZone).UTC()
}

// aoeToday is the reference "now" for submission ordering: the UTC calendar
// date of now+12h, at midnight UTC.
func aoeToday(now time.Time) time.Time {
	return civil(now.UTC().Add(12 * time.Hour))
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// expiryOf normalizes one date field of a record. Invalid values are logged
// and treated as absent.
func expiryOf(name, field, value string) (time.Time, bool) {
	t, err := NormalizeAoE(value)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			appLog.Debug("invalid date", "conference", name, "field", field, "value", value)
		}
		return time.Time{}, false
	}
	return t, true
}

// civilOf parses a date that is compared as a plain calendar date.
func civilOf(name, field, value string) (time.Time, bool) {
	t, err := ParseCivilDate(value)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			appLog.Debug("invalid date", "conference", name, "field", field, "value", value)
		}
		return time.Time{}, false
	}
	return t, true
}
