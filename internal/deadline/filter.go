package deadline

import "csconfs/internal/model"

// FilterByYear keeps records whose year equals year. A zero year keeps all.
func FilterByYear(records []model.Conference, year int) []model.Conference {
	if year == 0 {
		return records
	}
	out := make([]model.Conference, 0, len(records))
	for _, c := range records {
		if c.Year != nil && *c.Year == year {
			out = append(out, c)
		}
	}
	return out
}

// YearOptions returns every year from the newest to the oldest year present
// in records, without gaps.
func YearOptions(records []model.Conference) []int {
	lo, hi := 0, 0
	for _, c := range records {
		if c.Year == nil || *c.Year <= 0 {
			continue
		}
		y := *c.Year
		if lo == 0 || y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	if hi == 0 {
		return []int{}
	}
	out := make([]int, 0, hi-lo+1)
	for y := hi; y >= lo; y-- {
		out = append(out, y)
	}
	return out
}
