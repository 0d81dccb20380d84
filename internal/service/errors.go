package service

import "fmt"

// TaskNotFoundError is returned when a task lookup by title fails.
type TaskNotFoundError struct {
	ProjectName string
	Title       string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not found in project %q", e.Title, e.ProjectName)
}

// ProjectNotFoundError is returned when a project lookup fails on an
// operation that cannot tolerate a missing project.
type ProjectNotFoundError struct {
	ProjectName string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", e.ProjectName)
}

// ChecklistNotFoundError is returned when a task has no checklist of the
// well-known name.
type ChecklistNotFoundError struct {
	ChecklistName string
	Title         string
}

func (e *ChecklistNotFoundError) Error() string {
	return fmt.Sprintf("checklist %q not found for task %q", e.ChecklistName, e.Title)
}

// ChecklistItemNotFoundError is returned when a checklist item lookup fails
// or every item is already checked.
type ChecklistItemNotFoundError struct {
	ItemName string
	Title    string
}

func (e *ChecklistItemNotFoundError) Error() string {
	return fmt.Sprintf("checklist item %q not found for task %q", e.ItemName, e.Title)
}

// NoAvailableTasksError is returned when a project holds no task that is
// neither in progress nor done.
type NoAvailableTasksError struct {
	ProjectName string
}

func (e *NoAvailableTasksError) Error() string {
	return fmt.Sprintf("no available tasks found in project %q", e.ProjectName)
}

// InvalidStatusError is returned for a status outside the todo/wip/done enum.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid task status %q (valid statuses: todo, wip, done)", e.Status)
}

// ConnectionError wraps any unexpected remote failure. Callers only ever see
// the fixed taxonomy: adapters catch transport errors at their boundary and
// re-wrap them here, while domain errors propagate unwrapped.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection error with %s backend", e.Backend)
	}
	return fmt.Sprintf("connection error with %s backend: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError is returned when a backend cannot be constructed with the given
// credentials.
type AuthError struct {
	Backend string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed with %s backend: check your credentials", e.Backend)
}

func (e *AuthError) Unwrap() error { return e.Err }
