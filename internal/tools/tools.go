// Package tools exposes every task service operation as an MCP tool.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"taskbridge/internal/feedback"
	"taskbridge/internal/output"
	"taskbridge/internal/service"
)

// Handler carries the dependencies shared by all tool handlers. Tools never
// import a backend package; everything goes through the service contract.
type Handler struct {
	svc      service.TaskService
	launcher *feedback.Launcher
}

// NewHandler creates the tool handler set.
func NewHandler(svc service.TaskService, launcher *feedback.Launcher) *Handler {
	return &Handler{svc: svc, launcher: launcher}
}

// AddTaskTool creates a task in a project.
func AddTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add a new task to a project."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Task description")),
	)
}

func (h *Handler) AddTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, msg, err := h.svc.AddTask(ctx, project, title, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding task: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// GetNextTaskTool returns the next available task.
func GetNextTaskTool() mcp.Tool {
	return mcp.NewTool("get_next_available_task",
		mcp.WithDescription("Get the next available task from a project. An available task is one that is not in progress and not completed."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
	)
}

func (h *Handler) GetNextTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := h.svc.GetNextTask(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting next available task: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// MarkAsInProgressTool applies the WIP marker.
func MarkAsInProgressTool() mcp.Tool {
	return mcp.NewTool("mark_as_in_progress",
		mcp.WithDescription("Mark a task as in progress."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
	)
}

func (h *Handler) MarkAsInProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.titleOp(ctx, req, "Error marking task as in progress", h.svc.MarkAsInProgress)
}

// MarkAsCompletedTool sets the completion marker.
func MarkAsCompletedTool() mcp.Tool {
	return mcp.NewTool("mark_as_completed",
		mcp.WithDescription("Mark a task as completed."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
	)
}

func (h *Handler) MarkAsCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.titleOp(ctx, req, "Error marking task as completed", h.svc.MarkAsCompleted)
}

// titleOp factors the shared project+title argument handling for task
// transition handlers.
func (h *Handler) titleOp(
	ctx context.Context,
	req mcp.CallToolRequest,
	errPrefix string,
	op func(ctx context.Context, projectName, title string) (*service.Task, string, error),
) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := op(ctx, project, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", errPrefix, err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// UpdateTaskDescriptionTool appends to a task description.
func UpdateTaskDescriptionTool() mcp.Tool {
	return mcp.NewTool("update_task_description",
		mcp.WithDescription("Update the description of an existing task. The new text is appended with a timestamp; prior content is preserved."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Required(), mcp.Description("New description content to add")),
	)
}

func (h *Handler) UpdateTaskDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := h.svc.UpdateTaskDescription(ctx, project, title, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error updating task description: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// UpdateTaskWithChecklistTool appends checklist items.
func UpdateTaskWithChecklistTool() mcp.Tool {
	return mcp.NewTool("update_task_with_checklist",
		mcp.WithDescription("Add or update a checklist for a task. Items are appended to an existing checklist, or a new checklist is created."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithArray("checklist_items", mcp.Required(),
			mcp.Description("Checklist item names to add"),
			mcp.Items(map[string]interface{}{"type": "string"})),
	)
}

func (h *Handler) UpdateTaskWithChecklist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items := req.GetStringSlice("checklist_items", nil)
	if len(items) == 0 {
		return mcp.NewToolResultError("checklist_items is required"), nil
	}
	_, msg, err := h.svc.UpdateTaskWithChecklist(ctx, project, title, items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error updating task with checklist: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// CompleteChecklistItemTool checks a checklist item by name.
func CompleteChecklistItemTool() mcp.Tool {
	return mcp.NewTool("complete_checklist_item",
		mcp.WithDescription("Complete a checklist item for a task."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("checklist_item_name", mcp.Required(), mcp.Description("Name of the checklist item to complete")),
	)
}

func (h *Handler) CompleteChecklistItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemName, err := req.RequireString("checklist_item_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := h.svc.CompleteChecklistItem(ctx, project, title, itemName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error completing checklist item: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// GetNextUncheckedChecklistItemTool returns the first unchecked item.
func GetNextUncheckedChecklistItemTool() mcp.Tool {
	return mcp.NewTool("get_next_unchecked_checklist_item",
		mcp.WithDescription("Get the next unchecked checklist item for a task."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
	)
}

func (h *Handler) GetNextUncheckedChecklistItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := h.svc.GetNextUncheckedChecklistItem(ctx, project, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting next unchecked checklist item: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// GetTasksTool lists tasks filtered by status.
func GetTasksTool() mcp.Tool {
	return mcp.NewTool("get_tasks",
		mcp.WithDescription("Get tasks from a project with optional filtering."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("filter_type",
			mcp.Description("Filter type: 'all' (default), 'wip', or 'done'"),
			mcp.Enum("all", "wip", "done"),
			mcp.DefaultString("all")),
	)
}

func (h *Handler) GetTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter, err := service.ParseFilter(req.GetString("filter_type", "all"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting tasks: %s", err)), nil
	}

	tasks, msg, err := h.svc.GetTasks(ctx, project, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting tasks: %s", err)), nil
	}
	return mcp.NewToolResultText(output.Listing(msg, tasks)), nil
}

// GetTaskStatusTool returns a task's derived status.
func GetTaskStatusTool() mcp.Tool {
	return mcp.NewTool("get_task_status",
		mcp.WithDescription("Get the current status of a task: 'todo', 'wip', or 'done'."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
	)
}

func (h *Handler) GetTaskStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, msg, err := h.svc.GetTaskStatus(ctx, project, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting task status: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// SetTaskStatusTool forces a task to a given status.
func SetTaskStatusTool() mcp.Tool {
	return mcp.NewTool("set_task_status",
		mcp.WithDescription("Set the status of a task to 'todo', 'wip', or 'done'."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("status", mcp.Required(),
			mcp.Description("New status"),
			mcp.Enum("todo", "wip", "done")),
	)
}

func (h *Handler) SetTaskStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := service.ParseStatus(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error setting task status: %s", err)), nil
	}
	_, msg, err := h.svc.SetTaskStatus(ctx, project, title, status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error setting task status: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// DeleteAllTasksTool clears a project.
func DeleteAllTasksTool() mcp.Tool {
	return mcp.NewTool("delete_all_tasks",
		mcp.WithDescription("Permanently delete all tasks in a project."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Name of the project")),
	)
}

func (h *Handler) DeleteAllTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := h.svc.DeleteAllTasks(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error deleting tasks: %s", err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

// InteractiveFeedbackTool collects feedback through the out-of-process UI.
func InteractiveFeedbackTool() mcp.Tool {
	return mcp.NewTool("interactive_feedback",
		mcp.WithDescription("Request interactive feedback for a given project directory and summary."),
		mcp.WithString("project_directory", mcp.Required(), mcp.Description("Full path to the project directory")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Short, one-line summary of the changes")),
	)
}

func (h *Handler) InteractiveFeedback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("project_directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := req.RequireString("summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.launcher.Launch(ctx, dir, summary)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error launching feedback UI: %s", err)), nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding feedback result: %s", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
