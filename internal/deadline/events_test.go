package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csconfs/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEventsOnDay_AllKinds(t *testing.T) {
	c := model.Conference{
		Name:             "OSDI",
		Link:             "https://osdi.org",
		Deadline:         "2024-05-10",
		AbstractDeadline: "2024-05-10",
		NotificationDate: "2024-05-10",
		Date:             "2024-05-10",
	}

	got := EventsOnDay([]model.Conference{c}, day("2024-05-10"))
	require.Len(t, got, 4)

	wantKinds := []model.EventKind{model.KindDeadline, model.KindAbstract, model.KindNotification, model.KindConference}
	wantLabels := []string{"OSDI Deadline", "OSDI Abstract", "OSDI Notification", "OSDI Conf"}
	wantColors := []string{"#d32f2f", "#f57c00", "#1976d2", "#388e3c"}
	for i, ev := range got {
		assert.Equal(t, wantKinds[i], ev.Kind)
		assert.Equal(t, wantLabels[i], ev.Label)
		assert.Equal(t, wantColors[i], ev.Color)
		assert.Equal(t, "https://osdi.org", ev.Link)
		assert.Equal(t, "2024-05-10", ev.Day)
	}
}

func TestEventsOnDay_DeadlineStaysOnItsCivilDay(t *testing.T) {
	records := []model.Conference{{Name: "NSDI", Deadline: "2024-05-10"}}

	assert.Len(t, EventsOnDay(records, day("2024-05-10")), 1)
	assert.Empty(t, EventsOnDay(records, day("2024-05-11")))
	assert.Empty(t, EventsOnDay(records, day("2024-05-09")))
}

func TestEventsOnDay_AgreesWithCountdownExpiry(t *testing.T) {
	records := []model.Conference{{Name: "NSDI", Deadline: "2024-05-10"}}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	cd := CountdownFor(records[0].Deadline, now)
	expiry, err := NormalizeAoE(records[0].Deadline)
	require.NoError(t, err)
	assert.True(t, cd.Expiry.Equal(expiry))

	evs := EventsOnDay(records, day(AoEDay(cd.Expiry)))
	require.Len(t, evs, 1)
	assert.Equal(t, model.KindDeadline, evs[0].Kind)
}

func TestEventsOnDay_UsesDayInItsOwnLocation(t *testing.T) {
	records := []model.Conference{{Name: "NSDI", Deadline: "2024-05-10"}}
	tokyo := time.FixedZone("JST", 9*3600)

	got := EventsOnDay(records, time.Date(2024, 5, 10, 1, 0, 0, 0, tokyo))
	assert.Len(t, got, 1)
}

func TestEventsOnDay_Dedup(t *testing.T) {
	c := model.Conference{Name: "SOSP", Deadline: "2024-04-01", Link: "https://sosp.org"}
	records := []model.Conference{c, c, c}

	first := EventsOnDay(records, day("2024-04-01"))
	second := EventsOnDay(records, day("2024-04-01"))
	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
}

func TestEventsOnDay_DifferentLinksAreDistinct(t *testing.T) {
	records := []model.Conference{
		{Name: "SOSP", Deadline: "2024-04-01", Link: "https://a"},
		{Name: "SOSP", Deadline: "2024-04-01", Link: "https://b"},
	}
	assert.Len(t, EventsOnDay(records, day("2024-04-01")), 2)
}

func TestEventsOnDay_EmptyAndUnusableInput(t *testing.T) {
	assert.Empty(t, EventsOnDay(nil, day("2024-04-01")))
	assert.NotNil(t, EventsOnDay(nil, day("2024-04-01")))

	records := []model.Conference{
		{Name: "NoDates"},
		{Name: "Bad", Deadline: "soon", Date: "TBA"},
		{Name: "Template", Deadline: "2024-04-01", RollingDeadline: &model.RollingDeadline{
			SubmissionDay: 1, NotificationDay: 1, Start: "2024-04-01", End: "2024-06-01",
		}},
	}
	assert.Empty(t, EventsOnDay(records, day("2024-04-01")))
}

func TestEventsOnDay_InsertionOrderAcrossRecords(t *testing.T) {
	records := []model.Conference{
		{Name: "B", Date: "2024-04-01"},
		{Name: "A", Deadline: "2024-04-01", NotificationDate: "2024-04-01"},
	}
	got := EventsOnDay(records, day("2024-04-01"))
	require.Len(t, got, 3)
	assert.Equal(t, "B Conf", got[0].Label)
	assert.Equal(t, "A Deadline", got[1].Label)
	assert.Equal(t, "A Notification", got[2].Label)
}

func TestEvents_AllRecords(t *testing.T) {
	records := []model.Conference{
		{Name: "A", Deadline: "2024-04-01", Date: "2024-09-01"},
		{Name: "A", Deadline: "2024-04-01", Date: "2024-09-01"},
	}
	got := Events(records)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-04-01", got[0].Day)
	assert.Equal(t, "2024-09-01", got[1].Day)
}
