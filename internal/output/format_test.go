package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskbridge/internal/service"
)

func TestListing(t *testing.T) {
	tasks := []service.TaskSummary{
		{Title: "Fix login", Description: "auth bug", Status: service.StatusTodo},
		{Title: "Add caching", Description: "redis layer", Status: service.StatusWip},
		{Title: "Write docs", Description: "api docs", Status: service.StatusDone},
	}
	got := Listing("Found 3 task(s) in project 'api'.", tasks)
	want := "Found 3 task(s) in project 'api'.\n" +
		"1. [ ] Fix login - auth bug (Status: todo)\n" +
		"2. [~] Add caching - redis layer (Status: wip)\n" +
		"3. [x] Write docs - api docs (Status: done)"
	assert.Equal(t, want, got)
}

func TestListingEmpty(t *testing.T) {
	got := Listing("No tasks found in project 'api'.", nil)
	assert.Equal(t, "No tasks found in project 'api'.", got)
}

func TestListingNormalizesText(t *testing.T) {
	tasks := []service.TaskSummary{
		{Title: "  ", Description: "line one\nline two", Status: service.StatusTodo},
	}
	got := Listing("header", tasks)
	assert.Equal(t, "header\n1. [ ] (untitled) - line one line two (Status: todo)", got)
}

func TestStatusMarker(t *testing.T) {
	assert.Equal(t, "[ ]", StatusMarker(service.StatusTodo))
	assert.Equal(t, "[~]", StatusMarker(service.StatusWip))
	assert.Equal(t, "[x]", StatusMarker(service.StatusDone))
}
