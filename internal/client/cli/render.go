package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iudanet/garageboard/internal/client/board"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	localStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	remoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

var columnTitles = map[models.AppointmentStatus]string{
	models.StatusScheduled:    "Scheduled",
	models.StatusCheckedIn:    "Checked in",
	models.StatusInProgress:   "In progress",
	models.StatusWaitingParts: "Waiting for parts",
	models.StatusReady:        "Ready for pickup",
	models.StatusCompleted:    "Completed",
}

// ColumnTitle returns the display name of a board column.
func ColumnTitle(s models.AppointmentStatus) string {
	if t, ok := columnTitles[s]; ok {
		return t
	}
	return string(s)
}

// RenderBoard prints every column with its cards. Cards with an
// unconfirmed move are marked as pending.
func RenderBoard(s board.State) string {
	var b strings.Builder

	if s.Error != "" {
		b.WriteString(errorStyle.Render("! "+s.Error) + "\n\n")
	}

	for _, status := range models.BoardColumns {
		cards := s.Column(status)
		b.WriteString(headerStyle.Render(ColumnTitle(status)))
		b.WriteString(" " + mutedStyle.Render(fmt.Sprintf("(%d)", len(cards))) + "\n")

		if len(cards) == 0 {
			b.WriteString(mutedStyle.Render("  (empty)") + "\n")
		}
		for _, a := range cards {
			b.WriteString("  " + renderCard(a))
			if _, ok := s.PendingUpdate(a.ID); ok {
				b.WriteString(" " + pendingStyle.Render("(pending)"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch {
	case s.Stats != nil:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Total: %d cards", s.Stats.Total)) + "\n")
	case s.StatsError != "":
		b.WriteString(mutedStyle.Render("Stats unavailable: "+s.StatsError) + "\n")
	}
	return b.String()
}

func renderCard(a models.Appointment) string {
	parts := []string{labelStyle.Render(a.ID), a.CustomerName}
	if a.VehicleLabel != "" {
		parts = append(parts, a.VehicleLabel)
	}
	if a.Service != "" {
		parts = append(parts, a.Service)
	}
	line := strings.Join(parts, " · ")
	if !a.ScheduledAt.IsZero() {
		line += " " + mutedStyle.Render(a.ScheduledAt.Local().Format("Jan 2 15:04"))
	}
	return line + " " + mutedStyle.Render(fmt.Sprintf("v%d", a.Version))
}

// RenderRecord prints the labelled fields of a record followed by its
// id, version and entity tag.
func RenderRecord(title string, fields map[string]any, labels map[string]string, etag string) string {
	names := make([]string, 0, len(labels))
	width := 0
	for name, label := range labels {
		names = append(names, name)
		width = max(width, len(label))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(headerStyle.Render(title) + "\n")
	for _, name := range names {
		label := labelStyle.Width(width + 2).Render(labels[name] + ":")
		b.WriteString("  " + label + FormatValue(fields[name]) + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  id %v · version %v · etag %s",
		FormatValue(fields["id"]), FormatValue(fields["version"]), etag)) + "\n")
	return b.String()
}

// RenderDiff prints the conflicting fields side by side.
func RenderDiff(fields []conflict.Field) string {
	wLabel, wLocal := len("Field"), len("Yours")
	for _, f := range fields {
		wLabel = max(wLabel, len(f.Label))
		wLocal = max(wLocal, len(FormatValue(f.Local)))
	}

	cell := func(s lipgloss.Style, w int, v string) string {
		return s.Width(w + 2).Render(v)
	}

	var b strings.Builder
	b.WriteString(cell(labelStyle, wLabel, "Field") + cell(labelStyle, wLocal, "Yours") + labelStyle.Render("Server") + "\n")
	for _, f := range fields {
		b.WriteString(cell(lipgloss.NewStyle(), wLabel, f.Label))
		b.WriteString(cell(localStyle, wLocal, FormatValue(f.Local)))
		b.WriteString(remoteStyle.Render(FormatValue(f.Remote)) + "\n")
	}
	return b.String()
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "(empty)"
	case string:
		if x == "" {
			return "(empty)"
		}
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}
