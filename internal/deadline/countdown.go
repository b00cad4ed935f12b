package deadline

import (
	"fmt"
	"time"
)

// Band classifies how close a deadline is.
type Band string

const (
	// BandNone is used when there is no usable deadline.
	BandNone    Band = "none"
	BandPassed  Band = "passed"
	BandUrgent  Band = "urgent"
	BandSoon    Band = "soon"
	BandDistant Band = "distant"
)

// PassedText is the countdown text once a deadline has expired.
const PassedText = "Submission Passed"

const msPerDay = 24 * 60 * 60 * 1000

// Countdown is the time left until a deadline as shown next to a conference.
type Countdown struct {
	Text          string    `json:"text"`
	DaysRemaining float64   `json:"days_remaining"`
	Band          Band      `json:"urgency"`
	Expiry        time.Time `json:"expiry,omitempty"`
}

// CountdownFor computes the countdown to an AoE deadline. A missing or
// invalid deadline yields empty text and BandNone; the caller shows "TBD".
func CountdownFor(deadline string, now time.Time) Countdown {
	expiry, err := NormalizeAoE(deadline)
	if err != nil {
		return Countdown{Band: BandNone}
	}
	return CountdownUntil(expiry, now)
}

// CountdownUntil computes the countdown to an exact expiry instant. Text and
// band are derived from the same difference.
func CountdownUntil(expiry, now time.Time) Countdown {
	ms := expiry.Sub(now).Milliseconds()
	days := float64(ms) / msPerDay

	cd := Countdown{
		DaysRemaining: days,
		Band:          BandFor(days),
		Expiry:        expiry,
	}
	if ms <= 0 {
		cd.Text = PassedText
		return cd
	}
	cd.Text = fmt.Sprintf("%02dd %02dh %02dm %02ds",
		ms/msPerDay,
		(ms/(60*60*1000))%24,
		(ms/(60*1000))%60,
		(ms/1000)%60,
	)
	return cd
}

// BandFor maps fractional days remaining to an urgency band.
func BandFor(days float64) Band {
	switch {
	case days < 0:
		return BandPassed
	case days <= 7:
		return BandUrgent
	case days <= 30:
		return BandSoon
	default:
		return BandDistant
	}
}
