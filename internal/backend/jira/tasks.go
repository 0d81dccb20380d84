package jira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskbridge/internal/service"
)

// findIssue resolves an issue by exact summary within the project. The JQL
// contains-operator only narrows the candidates; the exact match happens
// here so both backends share the same lookup semantics.
func (c *Client) findIssue(ctx context.Context, projectName, title string) (*issue, error) {
	key := projectKey(projectName)
	jql := fmt.Sprintf(`project = "%s" AND summary ~ "%s"`, quoteJQL(key), quoteJQL(title))
	issues, err := c.searchIssues(ctx, jql, nil, searchPageSize)
	if err != nil {
		return nil, c.wrapErr("failed to search issues", err)
	}
	for i := range issues {
		if issues[i].Fields.Summary == title {
			return &issues[i], nil
		}
	}
	return nil, &service.TaskNotFoundError{ProjectName: projectName, Title: title}
}

// subtasks lists the subtasks of a parent issue in creation order.
func (c *Client) subtasks(ctx context.Context, parentKey string) ([]issue, error) {
	jql := fmt.Sprintf(`parent = "%s" ORDER BY created ASC`, quoteJQL(parentKey))
	return c.searchIssues(ctx, jql, nil, searchPageSize)
}

func (c *Client) taskFromIssue(is *issue, projectName string) *service.Task {
	status := service.StatusTodo
	if is.Fields.Status != nil {
		status = mapStatus(is.Fields.Status.Name)
	}
	return &service.Task{
		ID:          is.Key,
		Title:       is.Fields.Summary,
		Description: textFromADF(is.Fields.Description),
		ProjectName: projectName,
		Status:      status,
	}
}

// AddTask creates a Task-type issue in the project.
func (c *Client) AddTask(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	key := projectKey(projectName)
	body := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": key},
			"summary":     title,
			"description": adfFromText(description),
			"issuetype":   map[string]string{"name": "Task"},
		},
	}

	var created createdIssue
	if err := c.do(ctx, http.MethodPost, "/issue", body, &created); err != nil {
		return nil, "", c.wrapErr("failed to create task", err)
	}
	c.log.Info("task created", "key", created.Key, "project", key)
	task := &service.Task{
		ID:          created.Key,
		Title:       title,
		Description: description,
		ProjectName: projectName,
		Status:      service.StatusTodo,
	}
	return task, fmt.Sprintf("Task '%s' created successfully with key %s", title, created.Key), nil
}

// GetNextTask returns the first To Do issue, ordered by priority then
// creation time (the backend-native order for this adapter).
func (c *Client) GetNextTask(ctx context.Context, projectName string) (*service.Task, string, error) {
	key := projectKey(projectName)
	jql := fmt.Sprintf(`project = "%s" AND status = "To Do" ORDER BY priority DESC, created ASC`, quoteJQL(key))

	issues, err := c.searchIssues(ctx, jql, nil, 1)
	if err != nil {
		return nil, "", c.wrapErr("failed to get next task", err)
	}
	if len(issues) == 0 {
		return nil, "", &service.NoAvailableTasksError{ProjectName: projectName}
	}
	task := c.taskFromIssue(&issues[0], projectName)
	return task, fmt.Sprintf("Next available task: %s", task.Title), nil
}

// MarkAsInProgress transitions the issue to In Progress.
func (c *Client) MarkAsInProgress(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	if err := c.transitionTo(ctx, is.Key, statusInProgress); err != nil {
		return nil, "", c.wrapErr("failed to mark task as in progress", err)
	}
	task := c.taskFromIssue(is, projectName)
	task.Status = service.StatusWip
	return task, fmt.Sprintf("Task '%s' marked as in progress", title), nil
}

// MarkAsCompleted transitions the issue to Done.
func (c *Client) MarkAsCompleted(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	if err := c.transitionTo(ctx, is.Key, statusDone); err != nil {
		return nil, "", c.wrapErr("failed to mark task as completed", err)
	}
	task := c.taskFromIssue(is, projectName)
	task.Status = service.StatusDone
	return task, fmt.Sprintf("Task '%s' marked as completed", title), nil
}

// transitionTo discovers and applies the transition to the named state,
// skipping the round trip when the issue is already there.
func (c *Client) transitionTo(ctx context.Context, issueKey, targetStatus string) error {
	id, err := c.findTransitionID(ctx, issueKey, targetStatus)
	if err != nil {
		return err
	}
	return c.transitionIssue(ctx, issueKey, id)
}

// UpdateTaskDescription appends a timestamped entry to the description,
// preserving the existing text.
func (c *Client) UpdateTaskDescription(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	existing := textFromADF(is.Fields.Description)
	updated := service.AppendDescription(existing, description, time.Now())

	body := map[string]interface{}{
		"fields": map[string]interface{}{
			"description": adfFromText(updated),
		},
	}
	if err := c.do(ctx, http.MethodPut, "/issue/"+is.Key, body, nil); err != nil {
		return nil, "", c.wrapErr("failed to update task description", err)
	}
	task := c.taskFromIssue(is, projectName)
	task.Description = updated
	return task, fmt.Sprintf("Task '%s' description updated successfully", title), nil
}

// UpdateTaskWithChecklist appends checklist items as subtasks of the issue.
func (c *Client) UpdateTaskWithChecklist(ctx context.Context, projectName, title string, items []string) (*service.Task, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	key := projectKey(projectName)
	for _, name := range items {
		body := map[string]interface{}{
			"fields": map[string]interface{}{
				"project":   map[string]string{"key": key},
				"parent":    map[string]string{"key": is.Key},
				"summary":   name,
				"issuetype": map[string]string{"name": "Sub-task"},
			},
		}
		var created createdIssue
		if err := c.do(ctx, http.MethodPost, "/issue", body, &created); err != nil {
			return nil, "", c.wrapErr("failed to create checklist subtask", err)
		}
	}
	task := c.taskFromIssue(is, projectName)
	return task, fmt.Sprintf("Added %d checklist items as subtasks to '%s'", len(items), title), nil
}

// CompleteChecklistItem transitions the subtask matching the item name to
// Done.
func (c *Client) CompleteChecklistItem(ctx context.Context, projectName, title, itemName string) (*service.Task, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	subs, err := c.subtasks(ctx, is.Key)
	if err != nil {
		return nil, "", c.wrapErr("failed to list checklist subtasks", err)
	}
	if len(subs) == 0 {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	for i := range subs {
		if subs[i].Fields.Summary != itemName {
			continue
		}
		if err := c.transitionTo(ctx, subs[i].Key, statusDone); err != nil {
			return nil, "", c.wrapErr("failed to complete checklist item", err)
		}
		task := c.taskFromIssue(is, projectName)
		return task, fmt.Sprintf("Checklist item '%s' marked as completed", itemName), nil
	}
	return nil, "", &service.ChecklistItemNotFoundError{ItemName: itemName, Title: title}
}

// GetNextUncheckedChecklistItem returns the first subtask in creation order
// that is not Done.
func (c *Client) GetNextUncheckedChecklistItem(ctx context.Context, projectName, title string) (*service.ChecklistItem, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}
	subs, err := c.subtasks(ctx, is.Key)
	if err != nil {
		return nil, "", c.wrapErr("failed to list checklist subtasks", err)
	}
	if len(subs) == 0 {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	for i := range subs {
		status := service.StatusTodo
		if subs[i].Fields.Status != nil {
			status = mapStatus(subs[i].Fields.Status.Name)
		}
		if status != service.StatusDone {
			item := &service.ChecklistItem{ID: subs[i].Key, Name: subs[i].Fields.Summary, Checked: false}
			return item, fmt.Sprintf("Next unchecked checklist item for task '%s': %s", title, item.Name), nil
		}
	}
	return nil, "", &service.ChecklistItemNotFoundError{ItemName: "none", Title: title}
}

// GetTasks returns summaries filtered by workflow state. The filter is
// pushed into the JQL, so the remote side does the work.
func (c *Client) GetTasks(ctx context.Context, projectName string, filter service.Filter) ([]service.TaskSummary, string, error) {
	key := projectKey(projectName)
	jql := fmt.Sprintf(`project = "%s"`, quoteJQL(key))
	switch filter {
	case service.FilterWip:
		jql += ` AND status = "In Progress"`
	case service.FilterDone:
		jql += ` AND status = "Done"`
	}

	issues, err := c.searchIssues(ctx, jql, nil, searchPageSize)
	if err != nil {
		return nil, "", c.wrapErr("failed to get tasks", err)
	}
	var tasks []service.TaskSummary
	for i := range issues {
		status := service.StatusTodo
		if issues[i].Fields.Status != nil {
			status = mapStatus(issues[i].Fields.Status.Name)
		}
		tasks = append(tasks, service.TaskSummary{
			ID:          issues[i].Key,
			Title:       issues[i].Fields.Summary,
			Description: textFromADF(issues[i].Fields.Description),
			Status:      status,
		})
	}
	return tasks, service.TasksMessage(len(tasks), filter, projectName), nil
}

// GetTaskStatus maps the issue's workflow state to the internal enum.
func (c *Client) GetTaskStatus(ctx context.Context, projectName, title string) (service.Status, string, error) {
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return "", "", err
	}
	status := service.StatusTodo
	if is.Fields.Status != nil {
		status = mapStatus(is.Fields.Status.Name)
	}
	return status, fmt.Sprintf("Task '%s' status: %s", title, status), nil
}

// SetTaskStatus transitions the issue to the workflow state for the target
// status. Already being in the target state is a no-op, which keeps the
// operation idempotent even when the workflow has no self-transition.
func (c *Client) SetTaskStatus(ctx context.Context, projectName, title string, status service.Status) (*service.Task, string, error) {
	if _, err := service.ParseStatus(string(status)); err != nil {
		return nil, "", err
	}
	is, err := c.findIssue(ctx, projectName, title)
	if err != nil {
		return nil, "", err
	}

	current := service.StatusTodo
	if is.Fields.Status != nil {
		current = mapStatus(is.Fields.Status.Name)
	}
	if current != status {
		if err := c.transitionTo(ctx, is.Key, jiraStatusName[status]); err != nil {
			return nil, "", c.wrapErr("failed to set task status", err)
		}
	}

	task := c.taskFromIssue(is, projectName)
	task.Status = status
	return task, fmt.Sprintf("Task '%s' status set to '%s'", title, status), nil
}

// DeleteAllTasks deletes every issue in the project, subtasks included.
// There is no transactional guarantee; a retry removes whatever is left.
func (c *Client) DeleteAllTasks(ctx context.Context, projectName string) (string, error) {
	key := projectKey(projectName)
	jql := fmt.Sprintf(`project = "%s"`, quoteJQL(key))

	issues, err := c.searchIssues(ctx, jql, []string{"key"}, searchPageSize)
	if err != nil {
		return "", c.wrapErr("failed to delete tasks", err)
	}
	deleted := 0
	for i := range issues {
		if err := c.do(ctx, http.MethodDelete, "/issue/"+issues[i].Key+"?deleteSubtasks=true", nil, nil); err != nil {
			return "", c.wrapErr("failed to delete tasks", err)
		}
		deleted++
	}
	c.log.Debug("deleted all issues", "project", key, "count", deleted)
	return fmt.Sprintf("Deleted %d tasks from project '%s'", deleted, projectName), nil
}
