// Package service defines the backend-agnostic contract for task operations.
package service

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo Status = "todo"
	StatusWip  Status = "wip"
	StatusDone Status = "done"
)

// DefaultChecklistName is the single well-known checklist name used for
// all checklist operations. Additional checklists a backend may hold are
// ignored.
const DefaultChecklistName = "Checklist"

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusWip, StatusDone:
		return Status(s), nil
	}
	return "", &InvalidStatusError{Status: s}
}

// DeriveStatus applies the shared derivation rule: a completion marker wins
// over a WIP marker, and neither means todo.
func DeriveStatus(completed, inProgress bool) Status {
	switch {
	case completed:
		return StatusDone
	case inProgress:
		return StatusWip
	default:
		return StatusTodo
	}
}

// Filter selects tasks by derived status in GetTasks.
type Filter string

const (
	FilterAll  Filter = "all"
	FilterWip  Filter = "wip"
	FilterDone Filter = "done"
)

// ParseFilter validates a filter string.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterWip, FilterDone:
		return Filter(s), nil
	}
	return "", fmt.Errorf("invalid filter %q (valid filters: all, wip, done)", s)
}

// Matches reports whether a task with the given status passes the filter.
func (f Filter) Matches(s Status) bool {
	switch f {
	case FilterAll:
		return true
	case FilterWip:
		return s == StatusWip
	case FilterDone:
		return s == StatusDone
	}
	return false
}

// ChecklistItem is a single entry in a task checklist.
type ChecklistItem struct {
	ID      string
	Name    string
	Checked bool
}

// Checklist is an ordered set of checklist items attached to a task.
type Checklist struct {
	ID    string
	Name  string
	Items []ChecklistItem
}

// AddItem appends a new unchecked item.
func (c *Checklist) AddItem(name string) *ChecklistItem {
	c.Items = append(c.Items, ChecklistItem{Name: name})
	return &c.Items[len(c.Items)-1]
}

// CompleteItem marks the first item with the given name as checked.
// Returns false if no item matched. Items cannot be unchecked.
func (c *Checklist) CompleteItem(name string) bool {
	for i := range c.Items {
		if c.Items[i].Name == name {
			c.Items[i].Checked = true
			return true
		}
	}
	return false
}

// NextUncheckedItem returns the first item in insertion order that is not
// checked, or nil when every item is complete.
func (c *Checklist) NextUncheckedItem() *ChecklistItem {
	for i := range c.Items {
		if !c.Items[i].Checked {
			return &c.Items[i]
		}
	}
	return nil
}

// IsComplete reports whether every item is checked.
func (c *Checklist) IsComplete() bool {
	return c.NextUncheckedItem() == nil
}

// Task is a work item tracked in a remote backend.
type Task struct {
	ID          string
	Title       string
	Description string
	ProjectName string
	Status      Status
	Checklists  []Checklist
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Checklist returns the checklist with the given name, or nil.
func (t *Task) Checklist(name string) *Checklist {
	for i := range t.Checklists {
		if t.Checklists[i].Name == name {
			return &t.Checklists[i]
		}
	}
	return nil
}

// TaskSummary is the flattened task view returned by GetTasks.
type TaskSummary struct {
	ID          string
	Title       string
	Description string
	Status      Status
}
