// Package render prints conference lists and countdowns to a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"csconfs/internal/deadline"
	"csconfs/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Underline(true)

	nameStyle = lipgloss.NewStyle().Bold(true)

	bandStyles = map[deadline.Band]lipgloss.Style{
		deadline.BandPassed:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		deadline.BandUrgent:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		deadline.BandSoon:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		deadline.BandDistant: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		deadline.BandNone:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
)

const colGap = "  "

// List writes records as a table: name, deadline, countdown and place. The
// countdown column is colored by urgency band.
func List(w io.Writer, records []model.Conference, now time.Time) error {
	header := []string{"CONFERENCE", "DEADLINE (AoE)", "COUNTDOWN", "PLACE"}
	rows := make([][]string, 0, len(records))
	bands := make([]deadline.Band, 0, len(records))
	for _, c := range records {
		cd := deadline.CountdownFor(c.Deadline, now)
		bands = append(bands, cd.Band)
		rows = append(rows, []string{
			displayName(c),
			deadline.FormatAoEDate(c.Deadline),
			countdownText(cd),
			c.Place,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	writeRow(&b, header, widths, func(int) lipgloss.Style { return headerStyle })
	for i, row := range rows {
		band := bands[i]
		writeRow(&b, row, widths, func(col int) lipgloss.Style {
			switch col {
			case 0:
				return nameStyle
			case 2:
				return bandStyles[band]
			}
			return lipgloss.NewStyle()
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string, widths []int, style func(col int) lipgloss.Style) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(colGap)
		}
		s := style(i).Render(cell)
		if i < len(cells)-1 {
			s += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		b.WriteString(s)
	}
	b.WriteString("\n")
}

// CountdownLine renders a single record's countdown.
func CountdownLine(c model.Conference, now time.Time) string {
	cd := deadline.CountdownFor(c.Deadline, now)
	return fmt.Sprintf("%s  %s  %s",
		nameStyle.Render(displayName(c)),
		deadline.FormatAoEDate(c.Deadline),
		bandStyles[cd.Band].Render(countdownText(cd)),
	)
}

// Watch prints the countdown of c once per interval until ctx is cancelled
// or the deadline passes. clock supplies "now" for every line.
func Watch(ctx context.Context, w io.Writer, c model.Conference, clock func() time.Time, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		now := clock()
		if _, err := fmt.Fprintln(w, CountdownLine(c, now)); err != nil {
			return err
		}
		if cd := deadline.CountdownFor(c.Deadline, now); cd.Band == deadline.BandPassed || cd.Band == deadline.BandNone {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func displayName(c model.Conference) string {
	name := c.Name
	if c.Year != nil {
		name = fmt.Sprintf("%s %d", name, *c.Year)
	}
	if c.Note != "" {
		name += " (" + c.Note + ")"
	}
	return name
}

func countdownText(cd deadline.Countdown) string {
	if cd.Text == "" {
		return "TBD"
	}
	return cd.Text
}
