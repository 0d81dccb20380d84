package service

import (
	"fmt"
	"time"
)

// DescriptionTimeFormat is the timestamp layout used in description entries.
const DescriptionTimeFormat = "2006-01-02 15:04:05"

// AppendDescription builds the new description for an append-only update.
// Existing content is preserved as a prefix, separated by a timestamped
// marker; a task without prior content gets a "Created on" header instead.
func AppendDescription(existing, update string, now time.Time) string {
	ts := now.Format(DescriptionTimeFormat)
	if existing == "" {
		return fmt.Sprintf("--- Created on %s ---\n%s", ts, update)
	}
	return fmt.Sprintf("%s\n\n--- Updated on %s ---\n%s", existing, ts, update)
}

// TasksMessage builds the summary message for GetTasks results.
func TasksMessage(count int, filter Filter, projectName string) string {
	kind := ""
	switch filter {
	case FilterWip:
		kind = "work in progress "
	case FilterDone:
		kind = "completed "
	}
	if count == 0 {
		return fmt.Sprintf("No %stasks found in project '%s'.", kind, projectName)
	}
	return fmt.Sprintf("Found %d %stask(s) in project '%s'.", count, kind, projectName)
}
