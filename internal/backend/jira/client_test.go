package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbridge/internal/service"
)

// fakeJira is a minimal in-process Jira REST endpoint. Searches are answered
// from canned issue lists keyed on whether the JQL is a parent (subtask)
// query; every request is recorded for assertions.
type fakeJira struct {
	t *testing.T

	issues   []issue // answers plain project searches
	subtasks []issue // answers parent searches

	transitions []transition

	searchJQL       []string
	transitioned    []string // "<key>:<transitionID>"
	deleted         []string
	createdBodies   []map[string]interface{}
	updatedBodies   map[string]map[string]interface{}
	nextCreatedKeys []string
}

func newFakeJira(t *testing.T) *fakeJira {
	return &fakeJira{t: t, updatedBodies: make(map[string]map[string]interface{})}
}

func (f *fakeJira) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/search":
		var body struct {
			JQL string `json:"jql"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.searchJQL = append(f.searchJQL, body.JQL)

		issues := f.issues
		if containsParentClause(body.JQL) {
			issues = f.subtasks
		}
		writeJSON(w, searchResult{Issues: issues})

	case r.Method == http.MethodGet && pathIsTransitions(r.URL.Path):
		writeJSON(w, transitionsResult{Transitions: f.transitions})

	case r.Method == http.MethodPost && pathIsTransitions(r.URL.Path):
		var body struct {
			Transition struct {
				ID string `json:"id"`
			} `json:"transition"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		key := issueKeyFromPath(r.URL.Path)
		f.transitioned = append(f.transitioned, key+":"+body.Transition.ID)
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost && r.URL.Path == "/issue":
		var body map[string]interface{}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.createdBodies = append(f.createdBodies, body)
		key := "TM-100"
		if len(f.nextCreatedKeys) > 0 {
			key = f.nextCreatedKeys[0]
			f.nextCreatedKeys = f.nextCreatedKeys[1:]
		}
		writeJSON(w, createdIssue{ID: "10000", Key: key})

	case r.Method == http.MethodPut:
		var body map[string]interface{}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.updatedBodies[issueKeyFromPath(r.URL.Path)] = body
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete:
		f.deleted = append(f.deleted, issueKeyFromPath(r.URL.Path))
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "unexpected request: "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func containsParentClause(jql string) bool {
	return len(jql) >= 6 && jql[:6] == "parent"
}

func pathIsTransitions(path string) bool {
	return len(path) > len("/transitions") && path[len(path)-len("/transitions"):] == "/transitions"
}

func issueKeyFromPath(path string) string {
	// /issue/<key>[/transitions], query already stripped by the mux
	rest := path[len("/issue/"):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i]
		}
	}
	return rest
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeJira) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL, nil)
}

func issueWithStatus(key, summary, statusName string) issue {
	return issue{
		Key: key,
		Fields: issueFields{
			Summary: summary,
			Status:  &issueStatus{Name: statusName},
		},
	}
}

func TestGetTaskStatusExactTitleMatch(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{
		issueWithStatus("TM-2", "Fix bugs", "Done"),
		issueWithStatus("TM-1", "Fix bug", "In Progress"),
	}
	c := newTestClient(t, f)

	status, msg, err := c.GetTaskStatus(context.Background(), "tm", "Fix bug")
	require.NoError(t, err)
	assert.Equal(t, service.StatusWip, status)
	assert.Equal(t, "Task 'Fix bug' status: wip", msg)

	require.Len(t, f.searchJQL, 1)
	assert.Equal(t, `project = "TM" AND summary ~ "Fix bug"`, f.searchJQL[0])
}

func TestGetTaskStatusNotFound(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-2", "Fix bugs", "Done")}
	c := newTestClient(t, f)

	_, _, err := c.GetTaskStatus(context.Background(), "tm", "Fix bug")
	var notFound *service.TaskNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Fix bug", notFound.Title)
}

func TestAddTask(t *testing.T) {
	f := newFakeJira(t)
	f.nextCreatedKeys = []string{"TM-7"}
	c := newTestClient(t, f)

	task, msg, err := c.AddTask(context.Background(), "tm", "Write docs", "cover the API")
	require.NoError(t, err)
	assert.Equal(t, "TM-7", task.ID)
	assert.Equal(t, service.StatusTodo, task.Status)
	assert.Equal(t, "Task 'Write docs' created successfully with key TM-7", msg)

	require.Len(t, f.createdBodies, 1)
	fields := f.createdBodies[0]["fields"].(map[string]interface{})
	assert.Equal(t, "Write docs", fields["summary"])
	assert.Equal(t, map[string]interface{}{"key": "TM"}, fields["project"])
	assert.Equal(t, map[string]interface{}{"name": "Task"}, fields["issuetype"])

	desc := fields["description"].(map[string]interface{})
	assert.Equal(t, "doc", desc["type"])
}

func TestMarkAsCompletedUsesDiscoveredTransition(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "In Progress")}
	f.transitions = []transition{
		{ID: "11", Name: "Start", To: struct {
			Name string `json:"name"`
		}{Name: "In Progress"}},
		{ID: "31", Name: "Finish", To: struct {
			Name string `json:"name"`
		}{Name: "Done"}},
	}
	c := newTestClient(t, f)

	task, msg, err := c.MarkAsCompleted(context.Background(), "tm", "Fix bug")
	require.NoError(t, err)
	assert.Equal(t, service.StatusDone, task.Status)
	assert.Equal(t, "Task 'Fix bug' marked as completed", msg)
	assert.Equal(t, []string{"TM-1:31"}, f.transitioned)
}

func TestMarkAsInProgressNoTransitionAvailable(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "Done")}
	f.transitions = nil
	c := newTestClient(t, f)

	_, _, err := c.MarkAsInProgress(context.Background(), "tm", "Fix bug")
	var connErr *service.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Empty(t, f.transitioned)
}

func TestSetTaskStatusAlreadyThereIsNoOp(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "Done")}
	c := newTestClient(t, f)

	task, msg, err := c.SetTaskStatus(context.Background(), "tm", "Fix bug", service.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, service.StatusDone, task.Status)
	assert.Equal(t, "Task 'Fix bug' status set to 'done'", msg)
	assert.Empty(t, f.transitioned)
}

func TestSetTaskStatusTransitions(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.transitions = []transition{
		{ID: "21", Name: "Start", To: struct {
			Name string `json:"name"`
		}{Name: "In Progress"}},
	}
	c := newTestClient(t, f)

	task, _, err := c.SetTaskStatus(context.Background(), "tm", "Fix bug", service.StatusWip)
	require.NoError(t, err)
	assert.Equal(t, service.StatusWip, task.Status)
	assert.Equal(t, []string{"TM-1:21"}, f.transitioned)
}

func TestGetNextTaskEmptyProject(t *testing.T) {
	f := newFakeJira(t)
	c := newTestClient(t, f)

	_, _, err := c.GetNextTask(context.Background(), "tm")
	var noTasks *service.NoAvailableTasksError
	require.ErrorAs(t, err, &noTasks)

	require.Len(t, f.searchJQL, 1)
	assert.Contains(t, f.searchJQL[0], `status = "To Do"`)
	assert.Contains(t, f.searchJQL[0], "ORDER BY priority DESC, created ASC")
}

func TestGetTasksFilterInJQL(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "In Progress")}
	c := newTestClient(t, f)

	tasks, msg, err := c.GetTasks(context.Background(), "tm", service.FilterWip)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, service.StatusWip, tasks[0].Status)
	assert.Equal(t, "Found 1 work in progress task(s) in project 'tm'.", msg)

	require.Len(t, f.searchJQL, 1)
	assert.Contains(t, f.searchJQL[0], `AND status = "In Progress"`)
}

func TestUpdateTaskDescriptionPreservesExisting(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{{
		Key: "TM-1",
		Fields: issueFields{
			Summary:     "Fix bug",
			Description: adfFromText("original text"),
			Status:      &issueStatus{Name: "To Do"},
		},
	}}
	c := newTestClient(t, f)

	task, msg, err := c.UpdateTaskDescription(context.Background(), "tm", "Fix bug", "new findings")
	require.NoError(t, err)
	assert.Equal(t, "Task 'Fix bug' description updated successfully", msg)
	assert.Contains(t, task.Description, "original text")
	assert.Contains(t, task.Description, "new findings")
	assert.Contains(t, task.Description, "--- Updated on ")

	require.Contains(t, f.updatedBodies, "TM-1")
}

func TestUpdateTaskWithChecklistCreatesSubtasks(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.nextCreatedKeys = []string{"TM-2", "TM-3"}
	c := newTestClient(t, f)

	_, msg, err := c.UpdateTaskWithChecklist(context.Background(), "tm", "Fix bug", []string{"write test", "fix code"})
	require.NoError(t, err)
	assert.Equal(t, "Added 2 checklist items as subtasks to 'Fix bug'", msg)

	require.Len(t, f.createdBodies, 2)
	fields := f.createdBodies[0]["fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"key": "TM-1"}, fields["parent"])
	assert.Equal(t, map[string]interface{}{"name": "Sub-task"}, fields["issuetype"])
	assert.Equal(t, "write test", fields["summary"])
}

func TestCompleteChecklistItem(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.subtasks = []issue{
		issueWithStatus("TM-2", "write test", "To Do"),
		issueWithStatus("TM-3", "fix code", "To Do"),
	}
	f.transitions = []transition{
		{ID: "31", Name: "Finish", To: struct {
			Name string `json:"name"`
		}{Name: "Done"}},
	}
	c := newTestClient(t, f)

	_, msg, err := c.CompleteChecklistItem(context.Background(), "tm", "Fix bug", "fix code")
	require.NoError(t, err)
	assert.Equal(t, "Checklist item 'fix code' marked as completed", msg)
	assert.Equal(t, []string{"TM-3:31"}, f.transitioned)
}

func TestCompleteChecklistItemNoSubtasks(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	c := newTestClient(t, f)

	_, _, err := c.CompleteChecklistItem(context.Background(), "tm", "Fix bug", "anything")
	var clErr *service.ChecklistNotFoundError
	require.ErrorAs(t, err, &clErr)
}

func TestCompleteChecklistItemUnknownName(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.subtasks = []issue{issueWithStatus("TM-2", "write test", "To Do")}
	c := newTestClient(t, f)

	_, _, err := c.CompleteChecklistItem(context.Background(), "tm", "Fix bug", "deploy")
	var itemErr *service.ChecklistItemNotFoundError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, "deploy", itemErr.ItemName)
}

func TestGetNextUncheckedChecklistItem(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.subtasks = []issue{
		issueWithStatus("TM-2", "write test", "Done"),
		issueWithStatus("TM-3", "fix code", "To Do"),
	}
	c := newTestClient(t, f)

	item, msg, err := c.GetNextUncheckedChecklistItem(context.Background(), "tm", "Fix bug")
	require.NoError(t, err)
	assert.Equal(t, "fix code", item.Name)
	assert.Equal(t, "Next unchecked checklist item for task 'Fix bug': fix code", msg)
}

func TestGetNextUncheckedChecklistItemAllDone(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{issueWithStatus("TM-1", "Fix bug", "To Do")}
	f.subtasks = []issue{issueWithStatus("TM-2", "write test", "Done")}
	c := newTestClient(t, f)

	_, _, err := c.GetNextUncheckedChecklistItem(context.Background(), "tm", "Fix bug")
	var itemErr *service.ChecklistItemNotFoundError
	require.ErrorAs(t, err, &itemErr)
}

func TestDeleteAllTasks(t *testing.T) {
	f := newFakeJira(t)
	f.issues = []issue{
		issueWithStatus("TM-1", "Fix bug", "To Do"),
		issueWithStatus("TM-2", "Write docs", "Done"),
	}
	c := newTestClient(t, f)

	msg, err := c.DeleteAllTasks(context.Background(), "tm")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 2 tasks from project 'tm'", msg)
	assert.Equal(t, []string{"TM-1", "TM-2"}, f.deleted)
}

func TestAPIErrorSurfacesAsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["boom"]}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewWithBaseURL(srv.URL, nil)

	_, _, err := c.GetTasks(context.Background(), "tm", service.FilterAll)
	var connErr *service.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, BackendName, connErr.Backend)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestQuoteJQL(t *testing.T) {
	assert.Equal(t, `plain`, quoteJQL(`plain`))
	assert.Equal(t, `say \"hi\"`, quoteJQL(`say "hi"`))
	assert.Equal(t, `back\\slash`, quoteJQL(`back\slash`))
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, service.StatusDone, mapStatus("Done"))
	assert.Equal(t, service.StatusWip, mapStatus("In Progress"))
	assert.Equal(t, service.StatusTodo, mapStatus("To Do"))
	assert.Equal(t, service.StatusTodo, mapStatus("Blocked"))
}
