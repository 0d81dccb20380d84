package service

import "context"

// TaskService is the uniform contract every backend implements.
// All remote API calls go through this interface; the tool layer never
// imports a backend package directly.
//
// Every method returns a human-readable message alongside its result.
// Domain errors (TaskNotFoundError, NoAvailableTasksError, ...) propagate
// as-is; anything else surfaces as *ConnectionError.
type TaskService interface {
	// AddTask creates a task in the project, creating the project
	// container if it does not exist yet.
	AddTask(ctx context.Context, projectName, title, description string) (*Task, string, error)

	// GetNextTask returns the first task in backend order whose derived
	// status is neither wip nor done.
	GetNextTask(ctx context.Context, projectName string) (*Task, string, error)

	// MarkAsInProgress applies the backend's WIP marker to the task.
	MarkAsInProgress(ctx context.Context, projectName, title string) (*Task, string, error)

	// MarkAsCompleted clears the WIP marker and sets the completion marker.
	MarkAsCompleted(ctx context.Context, projectName, title string) (*Task, string, error)

	// UpdateTaskDescription appends a timestamped entry to the task
	// description. Prior content is never overwritten.
	UpdateTaskDescription(ctx context.Context, projectName, title, description string) (*Task, string, error)

	// UpdateTaskWithChecklist appends items to the task's well-known
	// checklist, creating it if absent.
	UpdateTaskWithChecklist(ctx context.Context, projectName, title string, items []string) (*Task, string, error)

	// CompleteChecklistItem checks the first item matching the name.
	CompleteChecklistItem(ctx context.Context, projectName, title, itemName string) (*Task, string, error)

	// GetNextUncheckedChecklistItem returns the first unchecked item in
	// list order.
	GetNextUncheckedChecklistItem(ctx context.Context, projectName, title string) (*ChecklistItem, string, error)

	// GetTasks returns task summaries filtered by derived status. An empty
	// result is a valid success.
	GetTasks(ctx context.Context, projectName string, filter Filter) ([]TaskSummary, string, error)

	// GetTaskStatus returns the derived status of a task.
	GetTaskStatus(ctx context.Context, projectName, title string) (Status, string, error)

	// SetTaskStatus forces the task to the requested status, clearing and
	// applying markers as needed. Idempotent: repeated calls with the same
	// target converge to the same remote state.
	SetTaskStatus(ctx context.Context, projectName, title string, status Status) (*Task, string, error)

	// DeleteAllTasks permanently removes every task in the project.
	// A missing project is tolerated as a no-op.
	DeleteAllTasks(ctx context.Context, projectName string) (string, error)
}
