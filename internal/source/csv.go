package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"csconfs/internal/model"
)

// Area is one research area row of a ranking table.
type Area struct {
	Area  string `json:"area"`
	Title string `json:"area_title"`
	Year  string `json:"year,omitempty"`
	Note  string `json:"note,omitempty"`
}

// AreaIndex is a ranking table (CSRankings or CORE) indexed for filtering.
type AreaIndex struct {
	// Areas groups areas under their parent area.
	Areas map[string][]Area `json:"areas"`
	// ConferencesByArea lists conference names per area title in first-seen order.
	ConferencesByArea map[string][]string `json:"conferences_by_area"`
	// NextTier is true for conferences flagged as next tier.
	NextTier map[string]bool `json:"next_tier"`
}

// Conferences returns the conference names filed under an area title.
func (ix AreaIndex) Conferences(areaTitle string) []string {
	return ix.ConferencesByArea[areaTitle]
}

// LoadAreas reads a ranking CSV file.
func LoadAreas(path string) (AreaIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return AreaIndex{}, err
	}
	defer f.Close()

	ix, err := ParseAreas(f)
	if err != nil {
		return AreaIndex{}, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}

// ParseAreas parses a ranking CSV with the header
// Area,AreaTitle,ParentArea,ConferenceTitle,NextTier,year,note.
func ParseAreas(r io.Reader) (AreaIndex, error) {
	rows, err := readCSV(r)
	if err != nil {
		return AreaIndex{}, err
	}

	ix := AreaIndex{
		Areas:             make(map[string][]Area),
		ConferencesByArea: make(map[string][]string),
		NextTier:          make(map[string]bool),
	}
	seenConf := make(map[[2]string]bool)

	for _, row := range rows {
		name := row["ConferenceTitle"]
		if name == "" {
			continue
		}
		ix.NextTier[name] = strings.EqualFold(row["NextTier"], "true")

		parent := row["ParentArea"]
		area := Area{Area: row["Area"], Title: row["AreaTitle"], Year: row["year"], Note: row["note"]}
		if !containsArea(ix.Areas[parent], area) {
			ix.Areas[parent] = append(ix.Areas[parent], area)
		}

		k := [2]string{area.Title, name}
		if !seenConf[k] {
			seenConf[k] = true
			ix.ConferencesByArea[area.Title] = append(ix.ConferencesByArea[area.Title], name)
		}
	}
	return ix, nil
}

func containsArea(areas []Area, a Area) bool {
	for _, x := range areas {
		if x.Title == a.Title && x.Year == a.Year && x.Note == a.Note {
			return true
		}
	}
	return false
}

// AcceptanceStat is the accepted/submitted total of one conference edition.
type AcceptanceStat struct {
	Accepted  int
	Submitted int
}

// Rate returns accepted/submitted, or false when nothing was submitted.
func (s AcceptanceStat) Rate() (float64, bool) {
	if s.Submitted <= 0 {
		return 0, false
	}
	return float64(s.Accepted) / float64(s.Submitted), true
}

// StatKey is the lookup key of an edition in acceptance statistics.
func StatKey(name string, year int) string {
	return name + "-" + strconv.Itoa(year)
}

// ParseAcceptanceStats parses a CSV with columns Conference,Year,Accepted,Submitted
// and sums rows of the same edition (tracks of one conference are listed separately).
func ParseAcceptanceStats(r io.Reader) (map[string]AcceptanceStat, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]AcceptanceStat)
	for _, row := range rows {
		name := row["Conference"]
		year := parseInt(row["Year"])
		if name == "" || year == nil {
			continue
		}
		k := StatKey(name, *year)
		s := out[k]
		s.Accepted += intOrZero(row["Accepted"])
		s.Submitted += intOrZero(row["Submitted"])
		out[k] = s
	}
	return out, nil
}

// MergeAcceptance fills missing acceptance rates and submission counts from
// stats. Values already present in the records win. The input is not modified.
func MergeAcceptance(records []model.Conference, stats map[string]AcceptanceStat) []model.Conference {
	out := make([]model.Conference, len(records))
	for i, c := range records {
		out[i] = c
		if c.Year == nil {
			continue
		}
		s, ok := stats[StatKey(c.Name, *c.Year)]
		if !ok {
			continue
		}
		if c.AcceptanceRate == nil {
			if rate, ok := s.Rate(); ok {
				pct := math.Round(rate*100*100) / 100
				out[i].AcceptanceRate = &pct
			}
		}
		if c.NumSubmission == nil {
			n := s.Submitted
			out[i].NumSubmission = &n
		}
	}
	return out
}

func intOrZero(s string) int {
	if n := parseInt(s); n != nil {
		return *n
	}
	return 0
}

// readCSV returns the data rows of a CSV as header-keyed maps.
func readCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
