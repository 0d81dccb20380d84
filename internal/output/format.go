// Package output renders task listings for tool responses.
package output

import (
	"fmt"
	"strings"

	"taskbridge/internal/service"
)

// StatusMarker is the glyph shown per task line.
func StatusMarker(s service.Status) string {
	switch s {
	case service.StatusDone:
		return "[x]"
	case service.StatusWip:
		return "[~]"
	default:
		return "[ ]"
	}
}

// Listing renders a numbered task listing under a summary header line.
// With no tasks the header stands alone.
func Listing(header string, tasks []service.TaskSummary) string {
	var b strings.Builder
	b.WriteString(header)
	for i, task := range tasks {
		fmt.Fprintf(&b, "\n%d. %s %s - %s (Status: %s)",
			i+1, StatusMarker(task.Status), normalizeTitle(task.Title), oneLine(task.Description), task.Status)
	}
	return b.String()
}

// normalizeTitle keeps each task on a single line.
// Empty or whitespace-only titles become "(untitled)".
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
