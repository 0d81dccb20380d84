// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskbridge/internal/service"
)

// FakeService is an in-memory implementation of service.TaskService for
// testing the tool layer and the factory without a remote backend.
type FakeService struct {
	mu       sync.RWMutex
	projects map[string][]*service.Task
	now      func() time.Time

	// Error injection for testing. When set, the matching method returns
	// the error without touching state.
	AddTaskErr               error
	GetNextTaskErr           error
	MarkErr                  error
	UpdateDescriptionErr     error
	UpdateWithChecklistErr   error
	CompleteChecklistItemErr error
	GetTasksErr              error
	GetTaskStatusErr         error
	SetTaskStatusErr         error
	DeleteAllTasksErr        error
}

var _ service.TaskService = (*FakeService)(nil)

// NewFakeService creates an empty fake.
func NewFakeService() *FakeService {
	return &FakeService{
		projects: make(map[string][]*service.Task),
		now:      func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// SeedTask inserts a task directly, bypassing the contract methods.
func (f *FakeService) SeedTask(projectName string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ProjectName = projectName
	f.projects[projectName] = append(f.projects[projectName], &task)
}

// find returns the task with the exact title, or nil.
func (f *FakeService) find(projectName, title string) *service.Task {
	for _, t := range f.projects[projectName] {
		if t.Title == title {
			return t
		}
	}
	return nil
}

func (f *FakeService) AddTask(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	if f.AddTaskErr != nil {
		return nil, "", f.AddTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task := &service.Task{
		ID:          fmt.Sprintf("task-%d", len(f.projects[projectName])+1),
		Title:       title,
		Description: service.AppendDescription("", description, f.now()),
		ProjectName: projectName,
		Status:      service.StatusTodo,
		CreatedAt:   f.now(),
	}
	f.projects[projectName] = append(f.projects[projectName], task)
	copied := *task
	return &copied, fmt.Sprintf("Added new task '%s' to %s", title, projectName), nil
}

func (f *FakeService) GetNextTask(ctx context.Context, projectName string) (*service.Task, string, error) {
	if f.GetNextTaskErr != nil {
		return nil, "", f.GetNextTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, t := range f.projects[projectName] {
		if t.Status == service.StatusTodo {
			copied := *t
			return &copied, fmt.Sprintf("Next available task: %s - %s", t.Title, t.Description), nil
		}
	}
	return nil, "", &service.NoAvailableTasksError{ProjectName: projectName}
}

func (f *FakeService) MarkAsInProgress(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	if f.MarkErr != nil {
		return nil, "", f.MarkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	t.Status = service.StatusWip
	copied := *t
	return &copied, fmt.Sprintf("Task '%s' in project '%s' marked as in progress.", title, projectName), nil
}

func (f *FakeService) MarkAsCompleted(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	if f.MarkErr != nil {
		return nil, "", f.MarkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	t.Status = service.StatusDone
	copied := *t
	return &copied, fmt.Sprintf("Task '%s' in project '%s' has been completed.", title, projectName), nil
}

func (f *FakeService) UpdateTaskDescription(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	if f.UpdateDescriptionErr != nil {
		return nil, "", f.UpdateDescriptionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	t.Description = service.AppendDescription(t.Description, description, f.now())
	copied := *t
	return &copied, fmt.Sprintf("Description updated for task '%s' in project '%s'.", title, projectName), nil
}

func (f *FakeService) UpdateTaskWithChecklist(ctx context.Context, projectName, title string, items []string) (*service.Task, string, error) {
	if f.UpdateWithChecklistErr != nil {
		return nil, "", f.UpdateWithChecklistErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	cl := t.Checklist(service.DefaultChecklistName)
	created := cl == nil
	if created {
		t.Checklists = append(t.Checklists, service.Checklist{Name: service.DefaultChecklistName})
		cl = &t.Checklists[len(t.Checklists)-1]
	}
	for _, item := range items {
		cl.AddItem(item)
	}
	copied := *t
	if created {
		return &copied, fmt.Sprintf("New checklist created for task '%s' in project '%s'.", title, projectName), nil
	}
	return &copied, fmt.Sprintf("Items appended to existing checklist in task '%s' in project '%s'.", title, projectName), nil
}

func (f *FakeService) CompleteChecklistItem(ctx context.Context, projectName, title, itemName string) (*service.Task, string, error) {
	if f.CompleteChecklistItemErr != nil {
		return nil, "", f.CompleteChecklistItemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	cl := t.Checklist(service.DefaultChecklistName)
	if cl == nil {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	if !cl.CompleteItem(itemName) {
		return nil, "", &service.ChecklistItemNotFoundError{ItemName: itemName, Title: title}
	}
	copied := *t
	return &copied, fmt.Sprintf("Checklist item '%s' in task '%s' in project '%s' completed.", itemName, title, projectName), nil
}

func (f *FakeService) GetNextUncheckedChecklistItem(ctx context.Context, projectName, title string) (*service.ChecklistItem, string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	cl := t.Checklist(service.DefaultChecklistName)
	if cl == nil {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	item := cl.NextUncheckedItem()
	if item == nil {
		return nil, "", &service.ChecklistItemNotFoundError{ItemName: "none", Title: title}
	}
	copied := *item
	return &copied, fmt.Sprintf("Next unchecked checklist item for task '%s': %s", title, item.Name), nil
}

func (f *FakeService) GetTasks(ctx context.Context, projectName string, filter service.Filter) ([]service.TaskSummary, string, error) {
	if f.GetTasksErr != nil {
		return nil, "", f.GetTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []service.TaskSummary
	for _, t := range f.projects[projectName] {
		if filter.Matches(t.Status) {
			out = append(out, service.TaskSummary{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      t.Status,
			})
		}
	}
	return out, service.TasksMessage(len(out), filter, projectName), nil
}

func (f *FakeService) GetTaskStatus(ctx context.Context, projectName, title string) (service.Status, string, error) {
	if f.GetTaskStatusErr != nil {
		return "", "", f.GetTaskStatusErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	t := f.find(projectName, title)
	if t == nil {
		return "", "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	return t.Status, fmt.Sprintf("Task '%s' status: %s", title, t.Status), nil
}

func (f *FakeService) SetTaskStatus(ctx context.Context, projectName, title string, status service.Status) (*service.Task, string, error) {
	if f.SetTaskStatusErr != nil {
		return nil, "", f.SetTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.find(projectName, title)
	if t == nil {
		return nil, "", &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	t.Status = status
	copied := *t
	return &copied, fmt.Sprintf("Task '%s' status set to '%s'", title, status), nil
}

func (f *FakeService) DeleteAllTasks(ctx context.Context, projectName string) (string, error) {
	if f.DeleteAllTasksErr != nil {
		return "", f.DeleteAllTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.projects[projectName]; !ok {
		return fmt.Sprintf("Project '%s' not found.", projectName), nil
	}
	delete(f.projects, projectName)
	return fmt.Sprintf("All tasks in project '%s' have been deleted.", projectName), nil
}
