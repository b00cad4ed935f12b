package ics

import (
	"errors"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	"csconfs/internal/deadline"
	appLog "csconfs/internal/log"
	"csconfs/internal/model"
)

// Parse reads a deadline feed produced by Export (or a compatible one) back
// into calendar events. VEVENTs without a summary or an all-day DTSTART are
// logged and skipped.
func Parse(r io.Reader) ([]model.CalendarEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]model.CalendarEvent, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "uid", ve.Id())
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.CalendarEvent, error) {
	var ev model.CalendarEvent

	p := ve.GetProperty(ical.ComponentPropertySummary)
	if p == nil || p.Value == "" {
		return ev, errors.New("missing SUMMARY")
	}
	ev.Label = p.Value

	p = ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil || len(p.Value) != len("20060102") {
		return ev, errors.New("missing all-day DTSTART")
	}
	ev.Day = p.Value[0:4] + "-" + p.Value[4:6] + "-" + p.Value[6:8]

	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		ev.Kind = model.EventKind(strings.ToLower(p.Value))
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		ev.Link = p.Value
	}

	ev.Name = ev.Label
	for _, ks := range deadline.Kinds {
		if ks.Kind == ev.Kind {
			ev.Name = strings.TrimSuffix(ev.Label, " "+ks.Label)
			ev.Color = ks.Color
			break
		}
	}
	return ev, nil
}
