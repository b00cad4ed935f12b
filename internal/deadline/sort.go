package deadline

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"csconfs/internal/model"
)

// SortKey selects the ordering applied by SortBy.
type SortKey int

const (
	// SortSubmissionDeadline: upcoming deadlines soonest first, then records
	// without a deadline, then passed deadlines most recent first.
	SortSubmissionDeadline SortKey = iota
	// SortNotificationDate: upcoming notifications ascending, passed ones
	// descending, records without a notification date last.
	SortNotificationDate
	// SortConfDate: conference date descending, unknown dates last.
	SortConfDate
	// SortConfName: conference name ascending.
	SortConfName
	// SortConfPlace: country (text after the last comma of place) ascending.
	SortConfPlace
	// SortAcceptanceRate: acceptance rate descending, unknown rates last.
	SortAcceptanceRate
)

// ErrUnknownSortKey is returned by ParseSortKey for a name that is not a sort key.
var ErrUnknownSortKey = errors.New("deadline: unknown sort key")

var sortKeyNames = map[SortKey]string{
	SortSubmissionDeadline: "submission_deadline",
	SortNotificationDate:   "notification_date",
	SortConfDate:           "confdate",
	SortConfName:           "confname",
	SortConfPlace:          "confplace",
	SortAcceptanceRate:     "acceptanceRate",
}

// SortKeys returns every sort key in declaration order.
func SortKeys() []SortKey {
	return []SortKey{
		SortSubmissionDeadline,
		SortNotificationDate,
		SortConfDate,
		SortConfName,
		SortConfPlace,
		SortAcceptanceRate,
	}
}

func (k SortKey) String() string {
	if s, ok := sortKeyNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey maps the external name of a sort key to its value.
func ParseSortKey(s string) (SortKey, error) {
	for k, name := range sortKeyNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// SortBy returns a new slice with records ordered by key. The sort is stable.
// now is read once and shared by every comparison.
func SortBy(records []model.Conference, key SortKey, now time.Time) ([]model.Conference, error) {
	var entries []sortEntry
	var cmp func(a, b sortEntry) int

	switch key {
	case SortSubmissionDeadline:
		entries, cmp = bySubmission(records, now)
	case SortNotificationDate:
		entries, cmp = byNotification(records, now)
	case SortConfDate:
		entries, cmp = byConfDate(records)
	case SortConfName:
		entries, cmp = byText(records, func(c model.Conference) string { return c.Name })
	case SortConfPlace:
		entries, cmp = byText(records, func(c model.Conference) string { return Country(c.Place) })
	case SortAcceptanceRate:
		entries, cmp = byAcceptance(records)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, key)
	}

	slices.SortStableFunc(entries, cmp)

	out := make([]model.Conference, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out, nil
}

// Country returns the sort key for a place: the text after its last comma,
// trimmed and lower-cased. Empty places sort first.
func Country(place string) string {
	if place == "" {
		return ""
	}
	parts := strings.Split(place, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}

type sortEntry struct {
	rec  model.Conference
	tier int
	at   time.Time
	num  float64
	text string
}

const (
	tierUpcoming = iota
	tierUnknown
	tierPassed
)

func bySubmission(records []model.Conference, now time.Time) ([]sortEntry, func(a, b sortEntry) int) {
	ref := aoeToday(now)
	entries := make([]sortEntry, len(records))
	for i, c := range records {
		e := sortEntry{rec: c, tier: tierUnknown}
		if t, ok := expiryOf(c.Name, "deadline", c.Deadline); ok {
			e.at = t
			e.tier = tierPassed
			if !t.Before(ref) {
				e.tier = tierUpcoming
			}
		}
		entries[i] = e
	}
	return entries, func(a, b sortEntry) int {
		if a.tier != b.tier {
			return a.tier - b.tier
		}
		switch a.tier {
		case tierUpcoming:
			return a.at.Compare(b.at)
		case tierPassed:
			return b.at.Compare(a.at)
		}
		return 0
	}
}

func byNotification(records []model.Conference, now time.Time) ([]sortEntry, func(a, b sortEntry) int) {
	entries := make([]sortEntry, len(records))
	for i, c := range records {
		e := sortEntry{rec: c, tier: tierUnknown}
		if t, ok := expiryOf(c.Name, "notification_date", c.NotificationDate); ok {
			e.at = t
			e.tier = tierPassed
			if !t.Before(now) {
				e.tier = tierUpcoming
			}
		}
		entries[i] = e
	}
	// Unknown sorts after both dated groups here.
	rank := map[int]int{tierUpcoming: 0, tierPassed: 1, tierUnknown: 2}
	return entries, func(a, b sortEntry) int {
		if a.tier != b.tier {
			return rank[a.tier] - rank[b.tier]
		}
		switch a.tier {
		case tierUpcoming:
			return a.at.Compare(b.at)
		case tierPassed:
			return b.at.Compare(a.at)
		}
		return 0
	}
}

func byConfDate(records []model.Conference) ([]sortEntry, func(a, b sortEntry) int) {
	entries := make([]sortEntry, len(records))
	for i, c := range records {
		e := sortEntry{rec: c, tier: tierUnknown}
		if t, ok := civilOf(c.Name, "date", c.Date); ok {
			e.at = t
			e.tier = tierUpcoming
		}
		entries[i] = e
	}
	return entries, func(a, b sortEntry) int {
		if a.tier != b.tier {
			return a.tier - b.tier
		}
		if a.tier == tierUnknown {
			return 0
		}
		return b.at.Compare(a.at)
	}
}

func byText(records []model.Conference, text func(model.Conference) string) ([]sortEntry, func(a, b sortEntry) int) {
	// A Collator keeps internal buffers, so each call gets its own.
	col := collate.New(language.English)
	entries := make([]sortEntry, len(records))
	for i, c := range records {
		entries[i] = sortEntry{rec: c, text: text(c)}
	}
	return entries, func(a, b sortEntry) int {
		return col.CompareString(a.text, b.text)
	}
}

// byAcceptance treats a missing or unparsed rate as unknown and places it
// after every known rate instead of letting it poison the ordering.
func byAcceptance(records []model.Conference) ([]sortEntry, func(a, b sortEntry) int) {
	entries := make([]sortEntry, len(records))
	for i, c := range records {
		e := sortEntry{rec: c, tier: tierUnknown}
		if c.AcceptanceRate != nil {
			e.num = *c.AcceptanceRate
			e.tier = tierUpcoming
		}
		entries[i] = e
	}
	return entries, func(a, b sortEntry) int {
		if a.tier != b.tier {
			return a.tier - b.tier
		}
		if a.tier == tierUnknown {
			return 0
		}
		switch {
		case a.num > b.num:
			return -1
		case a.num < b.num:
			return 1
		}
		return 0
	}
}
