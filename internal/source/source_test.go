package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csconfs/internal/model"
)

const sampleYAML = `
- name: ICSE
  year: 2025
  deadline: 2024-08-01
  abstract_deadline: "2024-07-25"
  date: 2025-04-27
  place: Ottawa, Canada
  link: https://conf.researchr.org/home/icse-2025
  acceptance_rate: 21.5%
  num_submission: "1,150"
- name: VLDB
  year: "2025"
  rolling_deadline:
    submission_day: 1
    notification_day: 15
    notification_month_offset: 2
    start: 2024-04-01
    end: 2025-03-01
- name: NoYear
  year: TBA
  acceptance_rate: unknown
- year: 2024
  deadline: 2024-01-01
`

func TestParseConferences(t *testing.T) {
	got, err := ParseConferences(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, got, 3, "row without a name is skipped")

	icse := got[0]
	assert.Equal(t, "ICSE", icse.Name)
	require.NotNil(t, icse.Year)
	assert.Equal(t, 2025, *icse.Year)
	assert.Equal(t, "2024-08-01", icse.Deadline)
	assert.Equal(t, "2024-07-25", icse.AbstractDeadline)
	assert.Equal(t, "2025-04-27", icse.Date)
	require.NotNil(t, icse.AcceptanceRate)
	assert.InDelta(t, 21.5, *icse.AcceptanceRate, 1e-9)
	require.NotNil(t, icse.NumSubmission)
	assert.Equal(t, 1150, *icse.NumSubmission)
	assert.Nil(t, icse.RollingDeadline)

	vldb := got[1]
	require.NotNil(t, vldb.Year)
	assert.Equal(t, 2025, *vldb.Year)
	require.NotNil(t, vldb.RollingDeadline)
	assert.Equal(t, model.RollingDeadline{
		SubmissionDay:           1,
		NotificationDay:         15,
		NotificationMonthOffset: 2,
		Start:                   "2024-04-01",
		End:                     "2025-03-01",
	}, *vldb.RollingDeadline)

	none := got[2]
	assert.Nil(t, none.Year)
	assert.Nil(t, none.AcceptanceRate)
}

func TestParseConferences_Empty(t *testing.T) {
	got, err := ParseConferences(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseConferences_Malformed(t *testing.T) {
	_, err := ParseConferences(strings.NewReader("name: [unterminated"))
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Nil(t, parseRate("NaN"))
	assert.Nil(t, parseRate(""))
	require.NotNil(t, parseRate(" 12.25 % "))
	assert.InDelta(t, 12.25, *parseRate(" 12.25 % "), 1e-9)
}

const sampleAreas = `Area,AreaTitle,ParentArea,ConferenceTitle,NextTier,year,note
ai,Artificial Intelligence,AI,AAAI,False,,
ai,Artificial Intelligence,AI,IJCAI,False,,
ml,Machine Learning,AI,ICML,False,,
ml,Machine Learning,AI,ICML,False,,
se,Software Engineering,Systems,ICSE,False,,
se,Software Engineering,Systems,ASE,True,,
`

func TestParseAreas(t *testing.T) {
	ix, err := ParseAreas(strings.NewReader(sampleAreas))
	require.NoError(t, err)

	assert.Equal(t, []Area{
		{Area: "ai", Title: "Artificial Intelligence"},
		{Area: "ml", Title: "Machine Learning"},
	}, ix.Areas["AI"])
	assert.Equal(t, []string{"ICML"}, ix.Conferences("Machine Learning"))
	assert.Equal(t, []string{"ICSE", "ASE"}, ix.Conferences("Software Engineering"))
	assert.True(t, ix.NextTier["ASE"])
	assert.False(t, ix.NextTier["ICSE"])
	assert.Nil(t, ix.Conferences("Theory"))
}

const sampleStats = `Conference,Year,Accepted,Submitted
ICSE,2025,200,1000
ICSE,2025,45,150
OSDI,2024,,
SOSP,bad,1,2
`

func TestParseAcceptanceStats(t *testing.T) {
	stats, err := ParseAcceptanceStats(strings.NewReader(sampleStats))
	require.NoError(t, err)

	assert.Equal(t, AcceptanceStat{Accepted: 245, Submitted: 1150}, stats["ICSE-2025"])
	_, ok := stats["OSDI-2024"].Rate()
	assert.False(t, ok)
	assert.Len(t, stats, 2)
}

func TestMergeAcceptance(t *testing.T) {
	y := 2025
	rate := 18.0
	records := []model.Conference{
		{Name: "ICSE", Year: &y},
		{Name: "ICSE", Year: &y, AcceptanceRate: &rate},
		{Name: "OSDI"},
	}
	stats := map[string]AcceptanceStat{"ICSE-2025": {Accepted: 245, Submitted: 1150}}

	got := MergeAcceptance(records, stats)
	require.Len(t, got, 3)

	require.NotNil(t, got[0].AcceptanceRate)
	assert.InDelta(t, 21.3, *got[0].AcceptanceRate, 1e-9)
	require.NotNil(t, got[0].NumSubmission)
	assert.Equal(t, 1150, *got[0].NumSubmission)

	assert.InDelta(t, 18.0, *got[1].AcceptanceRate, 1e-9, "present value wins")
	assert.Nil(t, got[2].AcceptanceRate)
	assert.Nil(t, records[0].AcceptanceRate, "input untouched")
}
