package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csconfs/internal/source"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) Fetch(_ context.Context, src source.Remote) (source.FetchResult, error) {
	if f.err != nil {
		return source.FetchResult{}, f.err
	}
	return source.FetchResult{Remote: src, Body: []byte(f.body)}, nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const confs = `
- name: ICSE
  year: 2025
  deadline: 2024-08-01
- name: VLDB
  year: 2025
  rolling_deadline:
    submission_day: 1
    notification_day: 15
    notification_month_offset: 1
    start: 2024-06-01
    end: 2024-08-01
- name: OSDI
  year: 2024
  deadline: 2023-12-01
`

const areas = `Area,AreaTitle,ParentArea,ConferenceTitle,NextTier,year,note
se,Software Engineering,Systems,ICSE,False,,
db,Databases,Systems,VLDB,False,,
`

func TestReload(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{
		ConferencesPath: writeFile(t, dir, "conferences.yaml", confs),
		AreaPaths: map[string]string{
			"csrankings": writeFile(t, dir, "csrankings.csv", areas),
			"core":       filepath.Join(dir, "missing.csv"),
		},
		AcceptanceURL: "https://example.org/stats.csv",
		Fetcher:       stubFetcher{body: "Conference,Year,Accepted,Submitted\nICSE,2025,100,400\n"},
	})

	require.NoError(t, c.Reload(context.Background(), now))
	snap := c.Snapshot()

	assert.Len(t, snap.Conferences, 5, "VLDB expands into three cycles")
	for _, conf := range snap.Conferences {
		assert.False(t, conf.IsTemplate())
	}
	require.NotNil(t, snap.Conferences[0].AcceptanceRate)
	assert.InDelta(t, 25.0, *snap.Conferences[0].AcceptanceRate, 1e-9)
	assert.Contains(t, snap.Areas, "csrankings")
	assert.NotContains(t, snap.Areas, "core")
	assert.Equal(t, now, snap.LoadedAt)
	assert.Equal(t, []string{"Databases", "Software Engineering"}, snap.AreaTitles())
}

func TestReload_KeepsPreviousSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conferences.yaml", confs)
	c := New(Options{ConferencesPath: path, Fetcher: stubFetcher{err: errors.New("offline")}})
	require.NoError(t, c.Reload(context.Background(), now))

	require.NoError(t, os.Remove(path))
	assert.Error(t, c.Reload(context.Background(), now.Add(time.Hour)))
	assert.Len(t, c.Snapshot().Conferences, 5)
	assert.Equal(t, now, c.Snapshot().LoadedAt)
}

func TestReload_AcceptanceFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{
		ConferencesPath: writeFile(t, dir, "conferences.yaml", confs),
		AcceptanceURL:   "https://example.org/stats.csv",
		Fetcher:         stubFetcher{err: errors.New("offline")},
	})
	require.NoError(t, c.Reload(context.Background(), now))
	assert.Nil(t, c.Snapshot().Conferences[0].AcceptanceRate)
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{
		ConferencesPath: writeFile(t, dir, "conferences.yaml", confs),
		AreaPaths:       map[string]string{"csrankings": writeFile(t, dir, "a.csv", areas)},
	})
	require.NoError(t, c.Reload(context.Background(), now))
	snap := c.Snapshot()

	assert.Len(t, snap.Select(Filter{}), 5)
	assert.Len(t, snap.Select(Filter{Year: 2024}), 1)
	assert.Len(t, snap.Select(Filter{Area: "Databases"}), 3)
	assert.Len(t, snap.Select(Filter{Year: 2025, Area: "Software Engineering"}), 1)
	assert.Empty(t, snap.Select(Filter{Area: "Theory"}))
}
