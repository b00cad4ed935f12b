package deadline

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "csconfs/internal/log"
	"csconfs/internal/model"
)

// maxCycles caps a single rolling rule, the same way occurrence expansion is
// capped elsewhere, so a typo in End cannot produce an unbounded list.
const maxCycles = 1200

// ErrInvalidRule reports a rolling-deadline rule that yields no cycles.
var ErrInvalidRule = errors.New("deadline: invalid rolling deadline rule")

// ValidateRule checks a rolling-deadline rule. Expand never returns this
// error; it produces zero cycles instead.
func ValidateRule(r model.RollingDeadline) error {
	if r.SubmissionDay < 1 || r.SubmissionDay > 31 {
		return fmt.Errorf("%w: submission_day %d out of range", ErrInvalidRule, r.SubmissionDay)
	}
	if r.NotificationDay < 1 || r.NotificationDay > 31 {
		return fmt.Errorf("%w: notification_day %d out of range", ErrInvalidRule, r.NotificationDay)
	}
	start, err := ParseCivilDate(r.Start)
	if err != nil {
		return fmt.Errorf("%w: start: %w", ErrInvalidRule, err)
	}
	end, err := ParseCivilDate(r.End)
	if err != nil {
		return fmt.Errorf("%w: end: %w", ErrInvalidRule, err)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRule, r.Start, r.End)
	}
	return nil
}

// Expand turns a template record into one record per monthly cycle. A record
// without a rule is returned unchanged as the only element.
//
// The first cycle is Start itself. Every following month uses SubmissionDay,
// clamped to the last day of months that are too short (day 31 becomes
// Feb 28/29, Apr 30, ...). Notifications land NotificationMonthOffset months
// after the submission month on NotificationDay, clamped the same way.
func Expand(c model.Conference) []model.Conference {
	if c.RollingDeadline == nil {
		return []model.Conference{c}
	}

	rule := *c.RollingDeadline
	dates, err := cycleDates(rule)
	if err != nil {
		appLog.Error("expand: rolling deadline skipped", err, "conference", c.Name)
		return []model.Conference{}
	}

	out := make([]model.Conference, 0, len(dates))
	for i, d := range dates {
		cycle := c
		cycle.Deadline = d.Format(DateLayout)
		cycle.NotificationDate = notificationFor(d, rule).Format(DateLayout)
		cycle.Note = fmt.Sprintf("Cycle %d", i+1)
		cycle.RollingDeadline = nil
		out = append(out, cycle)
	}
	return out
}

// ExpandAll expands every record in order.
func ExpandAll(records []model.Conference) []model.Conference {
	out := make([]model.Conference, 0, len(records))
	for _, c := range records {
		out = append(out, Expand(c)...)
	}
	return out
}

func cycleDates(r model.RollingDeadline) ([]time.Time, error) {
	if err := ValidateRule(r); err != nil {
		return nil, err
	}
	start, _ := ParseCivilDate(r.Start)
	end, _ := ParseCivilDate(r.End)

	dates := []time.Time{start}

	next := time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	if next.After(end) {
		return dates, nil
	}

	opt := rrule.ROption{
		Freq:       rrule.MONTHLY,
		Dtstart:    next,
		Until:      end,
		Bymonthday: clampedMonthDays(r.SubmissionDay),
	}
	if len(opt.Bymonthday) > 1 {
		opt.Bysetpos = []int{-1}
	}
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	iter := rr.Iterator()
	for {
		t, ok := iter()
		if !ok {
			break
		}
		if len(dates) >= maxCycles {
			appLog.Error("expand: truncated rolling cycles due to cap",
				errors.New("max cycles reached"),
				"start", r.Start,
				"end", r.End,
				"cap", maxCycles,
			)
			break
		}
		dates = append(dates, civil(t))
	}
	return dates, nil
}

// clampedMonthDays returns the BYMONTHDAY set whose last existing member in
// any month is min(day, days in month).
func clampedMonthDays(day int) []int {
	if day <= 28 {
		return []int{day}
	}
	days := make([]int, 0, day-27)
	for d := 28; d <= day; d++ {
		days = append(days, d)
	}
	return days
}

func notificationFor(submission time.Time, r model.RollingDeadline) time.Time {
	first := time.Date(submission.Year(), submission.Month()+time.Month(r.NotificationMonthOffset), 1, 0, 0, 0, 0, time.UTC)
	day := min(r.NotificationDay, daysIn(first))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(monthStart time.Time) int {
	return time.Date(monthStart.Year(), monthStart.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
