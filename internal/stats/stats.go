// Package stats aggregates conference records for the statistics view.
package stats

import (
	"math"
	"slices"
	"strings"

	"csconfs/internal/model"
)

// YearStat summarizes all conferences of one year that report submissions.
type YearStat struct {
	Year            int      `json:"year"`
	Submissions     int      `json:"submissions"`
	Accepted        int      `json:"accepted"`
	Rejected        int      `json:"rejected"`
	AcceptanceRate  *float64 `json:"acceptance_rate"`
	ConferenceCount int      `json:"conference_count"`
}

// Count is one row of a frequency table.
type Count struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Yearly groups records by year. Accepted papers are estimated from the
// acceptance rate; the yearly rate is the mean of the reported rates. Years
// without any submissions are omitted.
func Yearly(records []model.Conference) []YearStat {
	type acc struct {
		stat  YearStat
		rates []float64
	}
	byYear := make(map[int]*acc)

	for _, c := range records {
		if c.Year == nil || (c.NumSubmission == nil && c.AcceptanceRate == nil) {
			continue
		}
		a, ok := byYear[*c.Year]
		if !ok {
			a = &acc{stat: YearStat{Year: *c.Year}}
			byYear[*c.Year] = a
		}
		a.stat.ConferenceCount++

		if c.NumSubmission == nil || *c.NumSubmission <= 0 {
			continue
		}
		subs := *c.NumSubmission
		a.stat.Submissions += subs
		if c.AcceptanceRate != nil && *c.AcceptanceRate > 0 {
			rate := *c.AcceptanceRate
			a.stat.Accepted += int(math.Round(float64(subs) * rate / 100))
			a.rates = append(a.rates, rate)
		}
	}

	out := make([]YearStat, 0, len(byYear))
	for _, a := range byYear {
		if a.stat.Submissions <= 0 {
			continue
		}
		s := a.stat
		s.Rejected = s.Submissions - s.Accepted
		if len(a.rates) > 0 {
			var sum float64
			for _, r := range a.rates {
				sum += r
			}
			mean := round1(sum / float64(len(a.rates)))
			s.AcceptanceRate = &mean
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b YearStat) int { return a.Year - b.Year })
	return out
}

// Countries counts records per country or region of their place.
func Countries(records []model.Conference) []Count {
	return frequencies(records, CountryRegion)
}

// Cities counts records per city of their place.
func Cities(records []model.Conference) []Count {
	return frequencies(records, City)
}

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true,
	"DE": true, "FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true, "MA": true,
	"MI": true, "MN": true, "MS": true, "MO": true, "MT": true, "NE": true, "NV": true,
	"NH": true, "NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true, "DC": true,
}

// CountryRegion extracts a normalized country or region from a place such as
// "Boston, MA" or "Seoul, South Korea". It returns "" for an empty place.
func CountryRegion(place string) string {
	if strings.TrimSpace(place) == "" {
		return ""
	}
	if isOnline(place) {
		return "Online"
	}
	parts := splitPlace(place)
	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	lower := strings.ToLower(last)
	switch {
	case usStates[last]:
		return "USA"
	case last == "UK" || last == "United Kingdom":
		return "UK"
	case strings.Contains(lower, "korea"):
		return "Korea"
	case strings.Contains(lower, "czech"):
		return "Czech"
	}
	return last
}

// City returns the first component of a place.
func City(place string) string {
	if strings.TrimSpace(place) == "" {
		return ""
	}
	if isOnline(place) {
		return "Online"
	}
	return splitPlace(place)[0]
}

func isOnline(place string) bool {
	lower := strings.ToLower(place)
	return strings.Contains(lower, "virtual") || strings.Contains(lower, "online")
}

func splitPlace(place string) []string {
	parts := strings.Split(place, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func frequencies(records []model.Conference, key func(string) string) []Count {
	counts := make(map[string]int)
	for _, c := range records {
		if k := key(c.Place); k != "" {
			counts[k]++
		}
	}

	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{
			Name:       name,
			Count:      n,
			Percentage: round1(float64(n) / float64(len(records)) * 100),
		})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
