// Package jira implements the service.TaskService contract against the Jira
// Cloud REST API (v3). A project maps to an uppercased project key, the WIP
// marker is the "In Progress" workflow state, the completion marker is
// "Done", and checklists are modeled as subtasks of the parent issue.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"taskbridge/internal/config"
	"taskbridge/internal/service"
)

const (
	// BackendName identifies this adapter in wrapped errors.
	BackendName = "JIRA"

	// APITimeout bounds every Jira API call.
	APITimeout = 30 * time.Second

	// searchPageSize is the default maxResults for JQL searches.
	searchPageSize = 50
)

// Workflow state names looked up by transition discovery.
const (
	statusToDo       = "To Do"
	statusInProgress = "In Progress"
	statusDone       = "Done"
)

// jiraStatusName maps an internal status to the workflow state name.
var jiraStatusName = map[service.Status]string{
	service.StatusTodo: statusToDo,
	service.StatusWip:  statusInProgress,
	service.StatusDone: statusDone,
}

// Client implements service.TaskService using the Jira REST API.
type Client struct {
	baseURL    string
	authHeader string
	http       *http.Client
	log        *slog.Logger
}

var _ service.TaskService = (*Client)(nil)

// New builds the REST client and verifies the credentials with a /myself
// round trip.
func New(ctx context.Context, cfg *config.JiraConfig, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.APIToken))
	c := &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/") + "/rest/api/3",
		authHeader: "Basic " + auth,
		http:       &http.Client{Timeout: APITimeout},
		log:        log,
	}

	var self struct {
		AccountID   string `json:"accountId"`
		DisplayName string `json:"displayName"`
	}
	if err := c.do(ctx, http.MethodGet, "/myself", nil, &self); err != nil {
		return nil, c.wrapErr("connection test failed", err)
	}
	log.Info("jira backend connected", "server", cfg.ServerURL, "user", self.DisplayName)
	return c, nil
}

// NewWithBaseURL builds a client against an arbitrary endpoint without the
// connection test (for tests).
func NewWithBaseURL(baseURL string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic dGVzdDp0ZXN0",
		http:       &http.Client{Timeout: APITimeout},
		log:        log,
	}
}

// apiError is a non-2xx response from Jira.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.Status, e.Body)
}

// do performs a single JSON round trip against the Jira REST API.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug("jira request", "method", method, "endpoint", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Wire types for the slices of the Jira API this adapter touches.

type issue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary     string       `json:"summary"`
	Description *adfDoc      `json:"description"`
	Status      *issueStatus `json:"status"`
}

type issueStatus struct {
	Name string `json:"name"`
}

type searchResult struct {
	Issues []issue `json:"issues"`
}

type transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   struct {
		Name string `json:"name"`
	} `json:"to"`
}

type transitionsResult struct {
	Transitions []transition `json:"transitions"`
}

type createdIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

var defaultSearchFields = []string{"summary", "description", "status", "issuetype", "parent"}

// searchIssues runs a JQL search.
func (c *Client) searchIssues(ctx context.Context, jql string, fields []string, maxResults int) ([]issue, error) {
	if fields == nil {
		fields = defaultSearchFields
	}
	body := map[string]interface{}{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     fields,
	}
	var result searchResult
	if err := c.do(ctx, http.MethodPost, "/search", body, &result); err != nil {
		return nil, err
	}
	return result.Issues, nil
}

// getTransitions lists the transitions currently available on an issue.
func (c *Client) getTransitions(ctx context.Context, issueKey string) ([]transition, error) {
	var result transitionsResult
	if err := c.do(ctx, http.MethodGet, "/issue/"+issueKey+"/transitions", nil, &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// transitionIssue moves an issue through a workflow transition.
func (c *Client) transitionIssue(ctx context.Context, issueKey, transitionID string) error {
	body := map[string]interface{}{
		"transition": map[string]string{"id": transitionID},
	}
	return c.do(ctx, http.MethodPost, "/issue/"+issueKey+"/transitions", body, nil)
}

// findTransitionID discovers the transition leading to the named target
// state, matched case-insensitively.
func (c *Client) findTransitionID(ctx context.Context, issueKey, targetStatus string) (string, error) {
	transitions, err := c.getTransitions(ctx, issueKey)
	if err != nil {
		return "", err
	}
	for _, t := range transitions {
		if strings.EqualFold(t.To.Name, targetStatus) {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("no transition found to status %q for issue %s", targetStatus, issueKey)
}

// projectKey maps a project name to its Jira project key.
func projectKey(projectName string) string {
	return strings.ToUpper(projectName)
}

// quoteJQL escapes a string for interpolation into a quoted JQL literal.
func quoteJQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// mapStatus translates a Jira workflow state name to the internal enum.
// Unknown states count as todo.
func mapStatus(jiraStatus string) service.Status {
	switch strings.ToLower(jiraStatus) {
	case "done":
		return service.StatusDone
	case "in progress":
		return service.StatusWip
	default:
		return service.StatusTodo
	}
}

// wrapErr translates an unexpected remote failure into the single
// connection-error kind callers are allowed to see.
func (c *Client) wrapErr(msg string, err error) error {
	return &service.ConnectionError{Backend: BackendName, Err: fmt.Errorf("%s: %w", msg, err)}
}
