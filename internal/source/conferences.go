// Package source reads the data files behind the deadline views: the YAML
// conference list, the CSRankings/CORE area tables and the acceptance
// statistics CSV.
package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	appLog "csconfs/internal/log"
	"csconfs/internal/model"
)

// scalar accepts any YAML scalar and keeps its literal text, so a year written
// as 2025 or "2025" and a date written bare or quoted decode the same way.
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(strings.TrimSpace(n.Value))
	return nil
}

// rawConference is one row of conferences.yaml as written by hand.
type rawConference struct {
	Name             scalar `yaml:"name"`
	Year             scalar `yaml:"year"`
	Deadline         scalar `yaml:"deadline"`
	AbstractDeadline scalar `yaml:"abstract_deadline"`
	NotificationDate scalar `yaml:"notification_date"`
	RebuttalDate     scalar `yaml:"rebuttal_date"`
	Date             scalar `yaml:"date"`
	Place            scalar `yaml:"place"`
	Link             scalar `yaml:"link"`
	Description      scalar `yaml:"description"`
	Note             scalar `yaml:"note"`
	ProgramChair     scalar `yaml:"program_chair"`
	AcceptanceRate   scalar `yaml:"acceptance_rate"`
	NumSubmission    scalar `yaml:"num_submission"`

	RollingDeadline *rawRolling `yaml:"rolling_deadline"`
}

type rawRolling struct {
	SubmissionDay           int    `yaml:"submission_day"`
	NotificationDay         int    `yaml:"notification_day"`
	NotificationMonthOffset int    `yaml:"notification_month_offset"`
	Start                   scalar `yaml:"start"`
	End                     scalar `yaml:"end"`
}

// LoadConferences reads a conferences YAML file.
func LoadConferences(path string) ([]model.Conference, error) {
	if path == "" {
		return nil, errors.New("conferences path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	confs, err := ParseConferences(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return confs, nil
}

// ParseConferences decodes a YAML list of conference rows. Rows without a
// name are skipped; unusable numeric fields are treated as absent.
func ParseConferences(r io.Reader) ([]model.Conference, error) {
	var rows []rawConference
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Conference{}, nil
		}
		return nil, err
	}

	out := make([]model.Conference, 0, len(rows))
	for i, row := range rows {
		if row.Name == "" {
			appLog.Error("conference row skipped", errors.New("missing name"), "index", i)
			continue
		}
		out = append(out, row.toConference())
	}
	return out, nil
}

func (r rawConference) toConference() model.Conference {
	c := model.Conference{
		Name:             string(r.Name),
		Year:             parseInt(string(r.Year)),
		Deadline:         string(r.Deadline),
		AbstractDeadline: string(r.AbstractDeadline),
		NotificationDate: string(r.NotificationDate),
		RebuttalDate:     string(r.RebuttalDate),
		Date:             string(r.Date),
		Place:            string(r.Place),
		Link:             string(r.Link),
		Description:      string(r.Description),
		Note:             string(r.Note),
		ProgramChair:     string(r.ProgramChair),
		AcceptanceRate:   parseRate(string(r.AcceptanceRate)),
		NumSubmission:    parseInt(string(r.NumSubmission)),
	}
	if r.RollingDeadline != nil {
		c.RollingDeadline = &model.RollingDeadline{
			SubmissionDay:           r.RollingDeadline.SubmissionDay,
			NotificationDay:         r.RollingDeadline.NotificationDay,
			NotificationMonthOffset: r.RollingDeadline.NotificationMonthOffset,
			Start:                   string(r.RollingDeadline.Start),
			End:                     string(r.RollingDeadline.End),
		}
	}
	return c
}

// parseInt accepts "1,234" style counts. It returns nil for anything else.
func parseInt(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseRate accepts "23.5" or "23.5%". Non-numeric values become nil.
func parseRate(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
