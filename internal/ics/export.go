// Package ics publishes conference events as an iCalendar feed and reads such
// feeds back.
package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"csconfs/internal/deadline"
	appLog "csconfs/internal/log"
	"csconfs/internal/model"
)

// ProductID is written to PRODID.
const ProductID = "-//csconfs//deadlines//EN"

// UIDDomain is appended to every event UID.
const UIDDomain = "csconfs"

// Export writes one all-day VEVENT per distinct calendar event of records.
// UIDs depend only on the event itself, so re-exporting the same data yields
// the same UIDs and subscribed clients update entries in place.
func Export(w io.Writer, records []model.Conference, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	seen := make(map[string]struct{})
	for _, c := range records {
		for _, ev := range deadline.RecordEvents(c) {
			uid := EventUID(ev)
			if _, dup := seen[uid]; dup {
				continue
			}
			seen[uid] = struct{}{}

			day, err := time.Parse(deadline.DateLayout, ev.Day)
			if err != nil {
				appLog.Error("ics export: event skipped", err, "conference", ev.Name, "day", ev.Day)
				continue
			}

			ve := cal.AddEvent(uid)
			ve.SetDtStampTime(now.UTC())
			ve.SetSummary(ev.Label)
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ve.AddProperty(ical.ComponentPropertyCategories, string(ev.Kind))
			if ev.Link != "" {
				ve.SetURL(ev.Link)
			}
			if c.Place != "" {
				ve.SetLocation(c.Place)
			}
			if desc := describe(c, ev.Kind); desc != "" {
				ve.SetDescription(desc)
			}
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// EventUID returns the stable UID of an event.
func EventUID(ev model.CalendarEvent) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{ev.Name, string(ev.Kind), ev.Day, ev.Link}, "\x00")))
	return hex.EncodeToString(sum[:12]) + "@" + UIDDomain
}

func describe(c model.Conference, kind model.EventKind) string {
	var parts []string
	switch kind {
	case model.KindDeadline, model.KindAbstract, model.KindNotification:
		parts = append(parts, "23:59 AoE (UTC-12)")
	}
	if c.Note != "" {
		parts = append(parts, c.Note)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	return strings.Join(parts, "\n")
}
