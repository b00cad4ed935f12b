// Package catalog keeps the current, fully expanded set of conference records
// in memory and rebuilds it from the data files on demand.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"csconfs/internal/deadline"
	appLog "csconfs/internal/log"
	"csconfs/internal/model"
	"csconfs/internal/source"
)

// Fetcher retrieves remote data files.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Remote) (source.FetchResult, error)
}

// Options locates the data files read by Reload.
type Options struct {
	ConferencesPath string
	// AreaPaths maps a ranking name ("csrankings", "core") to its CSV.
	AreaPaths     map[string]string
	AcceptanceURL string
	Fetcher       Fetcher
}

// Snapshot is an immutable view of the loaded data.
type Snapshot struct {
	// Conferences are expanded: no record carries a rolling rule.
	Conferences []model.Conference
	Areas       map[string]source.AreaIndex
	LoadedAt    time.Time
}

// Filter narrows the records shown in a view.
type Filter struct {
	// Year keeps one edition year; zero keeps all.
	Year int
	// Area keeps conferences filed under this area title in any ranking.
	Area string
}

// Catalog holds the current Snapshot.
type Catalog struct {
	opts Options

	mu   sync.RWMutex
	snap Snapshot
}

// New returns an empty catalog.
func New(opts Options) *Catalog {
	return &Catalog{
		opts: opts,
		snap: Snapshot{Conferences: []model.Conference{}, Areas: map[string]source.AreaIndex{}},
	}
}

// Snapshot returns the current data.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Set replaces the data with already loaded records. Templates are expanded.
func (c *Catalog) Set(records []model.Conference, areas map[string]source.AreaIndex, now time.Time) {
	if areas == nil {
		areas = map[string]source.AreaIndex{}
	}
	snap := Snapshot{
		Conferences: deadline.ExpandAll(records),
		Areas:       areas,
		LoadedAt:    now,
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// Reload reads every data file and swaps in the result. Area tables and the
// acceptance statistics are optional: failures there are logged and the
// reload continues. If the conference list cannot be read, the previous
// snapshot stays in place and the error is returned.
func (c *Catalog) Reload(ctx context.Context, now time.Time) error {
	records, err := source.LoadConferences(c.opts.ConferencesPath)
	if err != nil {
		appLog.Error("catalog reload failed", err, "path", c.opts.ConferencesPath)
		return err
	}

	areas := make(map[string]source.AreaIndex)
	for name, path := range c.opts.AreaPaths {
		if path == "" {
			continue
		}
		ix, err := source.LoadAreas(path)
		if err != nil {
			appLog.Error("area table skipped", err, "ranking", name, "path", path)
			continue
		}
		areas[name] = ix
	}

	if stats, err := c.acceptanceStats(ctx); err != nil {
		appLog.Error("acceptance statistics skipped", err)
	} else if stats != nil {
		records = source.MergeAcceptance(records, stats)
	}

	c.Set(records, areas, now)
	snap := c.Snapshot()
	appLog.Info("catalog reloaded",
		"records", len(records),
		"expanded", len(snap.Conferences),
		"rankings", len(areas),
	)
	return nil
}

func (c *Catalog) acceptanceStats(ctx context.Context) (map[string]source.AcceptanceStat, error) {
	if c.opts.AcceptanceURL == "" {
		return nil, nil
	}
	if c.opts.Fetcher == nil {
		return nil, errors.New("no fetcher configured")
	}
	res, err := c.opts.Fetcher.Fetch(ctx, source.Remote{ID: "acceptance", URL: c.opts.AcceptanceURL})
	if err != nil {
		return nil, err
	}
	return source.ParseAcceptanceStats(bytes.NewReader(res.Body))
}

// Select applies f to the snapshot's conferences.
func (s Snapshot) Select(f Filter) []model.Conference {
	out := deadline.FilterByYear(s.Conferences, f.Year)
	if f.Area == "" {
		return out
	}

	names := make(map[string]bool)
	for _, ix := range s.Areas {
		for _, n := range ix.Conferences(f.Area) {
			names[strings.ToLower(n)] = true
		}
	}
	kept := make([]model.Conference, 0, len(out))
	for _, conf := range out {
		if names[strings.ToLower(conf.Name)] {
			kept = append(kept, conf)
		}
	}
	return kept
}

// AreaTitles lists every area title across rankings, sorted.
func (s Snapshot) AreaTitles() []string {
	seen := make(map[string]bool)
	for _, ix := range s.Areas {
		for title := range ix.ConferencesByArea {
			seen[title] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
