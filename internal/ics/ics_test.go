package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csconfs/internal/model"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestExportRoundTrip(t *testing.T) {
	records := []model.Conference{
		{Name: "ICSE", Deadline: "2024-08-01", NotificationDate: "2024-10-01", Link: "https://icse.org", Place: "Rio, Brazil"},
		{Name: "ICSE", Deadline: "2024-08-01", Link: "https://icse.org"},
		{Name: "FSE", Date: "2025-06-20"},
		{Name: "TBD", Deadline: "TBD"},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, records, now))
	out := buf.String()
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "BEGIN:VEVENT")

	events, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, events, 3, "duplicate deadline collapses, TBD produces nothing")

	assert.Equal(t, model.CalendarEvent{
		Name: "ICSE", Kind: model.KindDeadline, Label: "ICSE Deadline",
		Color: "#d32f2f", Link: "https://icse.org", Day: "2024-08-01",
	}, events[0])
	assert.Equal(t, model.KindNotification, events[1].Kind)
	assert.Equal(t, "2024-10-01", events[1].Day)
	assert.Equal(t, "FSE", events[2].Name)
	assert.Equal(t, model.KindConference, events[2].Kind)
	assert.Equal(t, "2025-06-20", events[2].Day)
}

func TestExportStableUIDs(t *testing.T) {
	records := []model.Conference{{Name: "ICSE", Deadline: "2024-08-01"}}

	var a, b bytes.Buffer
	require.NoError(t, Export(&a, records, now))
	require.NoError(t, Export(&b, records, now.Add(time.Hour)))

	uid := EventUID(model.CalendarEvent{Name: "ICSE", Kind: model.KindDeadline, Day: "2024-08-01"})
	assert.Contains(t, a.String(), uid)
	assert.Contains(t, b.String(), uid)
	assert.True(t, strings.HasSuffix(uid, "@"+UIDDomain))
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, now))

	events, err := Parse(&buf)
	require.NoError(t, err)
	assert.Empty(t, events)
}
