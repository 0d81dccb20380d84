package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"taskbridge/internal/feedback"
	"taskbridge/internal/service"
)

// NewServer builds the MCP server with every tool registered. The caller
// picks the transport (stdio or SSE).
func NewServer(svc service.TaskService, launcher *feedback.Launcher, version string) *server.MCPServer {
	s := server.NewMCPServer("taskbridge", version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandler(svc, launcher)

	s.AddTool(AddTaskTool(), h.AddTask)
	s.AddTool(GetNextTaskTool(), h.GetNextTask)
	s.AddTool(MarkAsInProgressTool(), h.MarkAsInProgress)
	s.AddTool(MarkAsCompletedTool(), h.MarkAsCompleted)
	s.AddTool(UpdateTaskDescriptionTool(), h.UpdateTaskDescription)
	s.AddTool(UpdateTaskWithChecklistTool(), h.UpdateTaskWithChecklist)
	s.AddTool(CompleteChecklistItemTool(), h.CompleteChecklistItem)
	s.AddTool(GetNextUncheckedChecklistItemTool(), h.GetNextUncheckedChecklistItem)
	s.AddTool(GetTasksTool(), h.GetTasks)
	s.AddTool(GetTaskStatusTool(), h.GetTaskStatus)
	s.AddTool(SetTaskStatusTool(), h.SetTaskStatus)
	s.AddTool(DeleteAllTasksTool(), h.DeleteAllTasks)
	s.AddTool(InteractiveFeedbackTool(), h.InteractiveFeedback)

	return s
}
