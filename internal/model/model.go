package model

// Conference represents one concrete conference edition, or one cycle of a
// rolling-deadline series after expansion.
//
// Date fields hold civil dates as written in the source data (normally
// YYYY-MM-DD). They are interpreted by internal/deadline; an empty string
// means the date is not known yet.
type Conference struct {
	Name string `json:"name" yaml:"name"`
	// Year is nil when the source row has no usable year.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	Deadline         string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	AbstractDeadline string `json:"abstract_deadline,omitempty" yaml:"abstract_deadline,omitempty"`
	NotificationDate string `json:"notification_date,omitempty" yaml:"notification_date,omitempty"`
	RebuttalDate     string `json:"rebuttal_date,omitempty" yaml:"rebuttal_date,omitempty"`
	// Date is when the conference itself takes place. It is never AoE-shifted.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	Place        string `json:"place,omitempty" yaml:"place,omitempty"`
	Link         string `json:"link,omitempty" yaml:"link,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Note         string `json:"note,omitempty" yaml:"note,omitempty"`
	ProgramChair string `json:"program_chair,omitempty" yaml:"program_chair,omitempty"`

	// AcceptanceRate is a percentage in [0, 100].
	AcceptanceRate *float64 `json:"acceptance_rate,omitempty" yaml:"acceptance_rate,omitempty"`
	NumSubmission  *int     `json:"num_submission,omitempty" yaml:"num_submission,omitempty"`

	// RollingDeadline marks the record as a template. Templates must be
	// expanded before they are sorted, bucketed or displayed.
	RollingDeadline *RollingDeadline `json:"rolling_deadline,omitempty" yaml:"rolling_deadline,omitempty"`
}

// IsTemplate reports whether the record still carries a recurrence rule.
func (c Conference) IsTemplate() bool {
	return c.RollingDeadline != nil
}

// RollingDeadline describes a monthly submission cycle: one submission on
// SubmissionDay of every month from Start to End inclusive, each paired with a
// notification NotificationMonthOffset months later on NotificationDay.
type RollingDeadline struct {
	SubmissionDay           int    `json:"submission_day" yaml:"submission_day"`
	NotificationDay         int    `json:"notification_day" yaml:"notification_day"`
	NotificationMonthOffset int    `json:"notification_month_offset" yaml:"notification_month_offset"`
	Start                   string `json:"start" yaml:"start"`
	End                     string `json:"end" yaml:"end"`
}

// EventKind is the kind of a calendar event.
type EventKind string

const (
	KindDeadline     EventKind = "deadline"
	KindAbstract     EventKind = "abstract"
	KindNotification EventKind = "notification"
	KindConference   EventKind = "conference"
)

// CalendarEvent is a single entry shown on one calendar day. It is derived
// per query and never stored.
type CalendarEvent struct {
	Name  string    `json:"name"`
	Kind  EventKind `json:"type"`
	Label string    `json:"label"`
	Color string    `json:"color"`
	Link  string    `json:"link,omitempty"`
	// Day is the civil day (YYYY-MM-DD) the event was bucketed into.
	Day string `json:"day"`
}
