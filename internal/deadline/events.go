package deadline

import (
	"time"

	"csconfs/internal/model"
)

// KindStyle is the presentation metadata attached to each event kind.
type KindStyle struct {
	Kind        model.EventKind `json:"type"`
	Label       string          `json:"label"`
	Color       string          `json:"color"`
	LegendLabel string          `json:"legend_label"`
}

// Kinds lists the event kinds in the order events are emitted per record.
var Kinds = []KindStyle{
	{Kind: model.KindDeadline, Label: "Deadline", Color: "#d32f2f", LegendLabel: "Submission Deadline"},
	{Kind: model.KindAbstract, Label: "Abstract", Color: "#f57c00", LegendLabel: "Abstract Deadline"},
	{Kind: model.KindNotification, Label: "Notification", Color: "#1976d2", LegendLabel: "Notification Date"},
	{Kind: model.KindConference, Label: "Conf", Color: "#388e3c", LegendLabel: "Conference Date"},
}

// eventKey identifies an event within the result set. Label and color are
// functions of name and kind, so this tuple is equivalent to comparing every
// exposed field.
type eventKey struct {
	name string
	kind model.EventKind
	day  string
	link string
}

// EventDay returns the calendar day (YYYY-MM-DD) on which a record's event of
// the given kind is shown. Deadline, abstract and notification dates go
// through the AoE normalizer and are placed on the AoE day of their expiry,
// which is the civil date written in the data. Conference dates are plain
// civil dates.
func EventDay(c model.Conference, kind model.EventKind) (string, bool) {
	switch kind {
	case model.KindDeadline:
		return aoeDayOf(c.Name, "deadline", c.Deadline)
	case model.KindAbstract:
		return aoeDayOf(c.Name, "abstract_deadline", c.AbstractDeadline)
	case model.KindNotification:
		return aoeDayOf(c.Name, "notification_date", c.NotificationDate)
	case model.KindConference:
		d, ok := civilOf(c.Name, "date", c.Date)
		if !ok {
			return "", false
		}
		return d.Format(DateLayout), true
	default:
		return "", false
	}
}

func aoeDayOf(name, field, value string) (string, bool) {
	expiry, ok := expiryOf(name, field, value)
	if !ok {
		return "", false
	}
	return AoEDay(expiry), true
}

// RecordEvents returns every calendar event a record produces, in kind order.
// Templates produce nothing.
func RecordEvents(c model.Conference) []model.CalendarEvent {
	if c.IsTemplate() {
		return nil
	}
	var out []model.CalendarEvent
	for _, ks := range Kinds {
		day, ok := EventDay(c, ks.Kind)
		if !ok {
			continue
		}
		out = append(out, model.CalendarEvent{
			Name:  c.Name,
			Kind:  ks.Kind,
			Label: c.Name + " " + ks.Label,
			Color: ks.Color,
			Link:  c.Link,
			Day:   day,
		})
	}
	return out
}

// Events returns the deduplicated events of all records, in record order.
func Events(records []model.Conference) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	seen := make(map[eventKey]struct{})
	for _, c := range records {
		for _, ev := range RecordEvents(c) {
			out = appendUnique(out, seen, ev)
		}
	}
	return out
}

// EventsOnDay returns the events landing on the civil date of day (taken in
// day's own location), deduplicated, in insertion order.
func EventsOnDay(records []model.Conference, day time.Time) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	if len(records) == 0 {
		return out
	}

	dayStr := civil(day).Format(DateLayout)
	seen := make(map[eventKey]struct{})
	for _, c := range records {
		for _, ev := range RecordEvents(c) {
			if ev.Day != dayStr {
				continue
			}
			out = appendUnique(out, seen, ev)
		}
	}
	return out
}

func appendUnique(out []model.CalendarEvent, seen map[eventKey]struct{}, ev model.CalendarEvent) []model.CalendarEvent {
	k := eventKey{name: ev.Name, kind: ev.Kind, day: ev.Day, link: ev.Link}
	if _, dup := seen[k]; dup {
		return out
	}
	seen[k] = struct{}{}
	return append(out, ev)
}
