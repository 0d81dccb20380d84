// Package trello implements the service.TaskService contract against a
// Trello board. A project maps to a board list, the WIP marker is a board
// label, and the completion marker is the card's dueComplete flag.
package trello

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	api "github.com/adlio/trello"

	"taskbridge/internal/config"
	"taskbridge/internal/service"
)

const (
	// BackendName identifies this adapter in wrapped errors.
	BackendName = "Trello"

	// WIPLabelName is the board label used as the in-progress marker.
	WIPLabelName = "WIP"

	// WIPLabelColor is used when the label has to be created.
	WIPLabelColor = "blue"

	// APITimeout bounds every Trello API call.
	APITimeout = 10 * time.Second
)

// cardFields is what we ask Trello for when listing cards.
var cardFields = api.Arguments{"fields": "name,desc,dueComplete,idLabels"}

// Client implements service.TaskService using the Trello REST API.
type Client struct {
	api        *api.Client
	boardID    string
	boardName  string
	wipLabelID string
	log        *slog.Logger
}

var _ service.TaskService = (*Client)(nil)

// New connects to Trello, resolves the configured board by exact name, and
// ensures the WIP label exists on it.
func New(ctx context.Context, cfg *config.TrelloConfig, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	cl := api.NewClient(cfg.APIKey, cfg.APIToken)
	cl.Client = &http.Client{Timeout: APITimeout}

	c := &Client{api: cl, boardName: cfg.BoardName, log: log}

	boards, err := cl.GetMyBoards(api.Defaults())
	if err != nil {
		return nil, c.wrapErr("failed to list boards", err)
	}
	for _, b := range boards {
		if b.Name == cfg.BoardName {
			c.boardID = b.ID
			break
		}
	}
	if c.boardID == "" {
		return nil, &service.ConnectionError{
			Backend: BackendName,
			Err:     fmt.Errorf("board %q not found", cfg.BoardName),
		}
	}

	if err := c.ensureWIPLabel(); err != nil {
		return nil, err
	}
	log.Info("trello backend connected", "board", cfg.BoardName)
	return c, nil
}

// ensureWIPLabel finds or creates the WIP label on the board.
func (c *Client) ensureWIPLabel() error {
	var labels []*api.Label
	if err := c.api.Get("boards/"+c.boardID+"/labels", api.Arguments{"limit": "1000"}, &labels); err != nil {
		return c.wrapErr("failed to list board labels", err)
	}
	for _, l := range labels {
		if l.Name == WIPLabelName {
			c.wipLabelID = l.ID
			return nil
		}
	}
	var created api.Label
	args := api.Arguments{"name": WIPLabelName, "color": WIPLabelColor, "idBoard": c.boardID}
	if err := c.api.Post("labels", args, &created); err != nil {
		return c.wrapErr("failed to create WIP label", err)
	}
	c.wipLabelID = created.ID
	return nil
}

// AddTask creates a card at the bottom of the project list, creating the
// list if it does not exist.
func (c *Client) AddTask(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	list, err := c.findList(projectName)
	if err != nil {
		return nil, "", err
	}
	if list == nil {
		var created api.List
		args := api.Arguments{"name": projectName, "idBoard": c.boardID}
		if err := c.api.Post("lists", args, &created); err != nil {
			return nil, "", c.wrapErr("failed to create list", err)
		}
		list = &created
	}

	var card api.Card
	args := api.Arguments{"name": title, "desc": description, "idList": list.ID, "pos": "bottom"}
	if err := c.api.Post("cards", args, &card); err != nil {
		return nil, "", c.wrapErr("failed to add task", err)
	}
	task := c.taskFromCard(&card, projectName)
	return task, fmt.Sprintf("Added new task '%s' to %s", title, projectName), nil
}

// GetNextTask returns the first card in list order without the WIP label
// and without the completion flag.
func (c *Client) GetNextTask(ctx context.Context, projectName string) (*service.Task, string, error) {
	list, err := c.findList(projectName)
	if err != nil {
		return nil, "", err
	}
	if list == nil {
		return nil, "", &service.NoAvailableTasksError{ProjectName: projectName}
	}
	cards, err := c.listCards(list.ID)
	if err != nil {
		return nil, "", c.wrapErr("failed to get next task", err)
	}
	for _, card := range cards {
		if c.cardStatus(card) == service.StatusTodo {
			task := c.taskFromCard(card, projectName)
			return task, fmt.Sprintf("Next available task: %s - %s", card.Name, card.Desc), nil
		}
	}
	return nil, "", &service.NoAvailableTasksError{ProjectName: projectName}
}

// MarkAsInProgress applies the WIP label.
func (c *Client) MarkAsInProgress(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	if !c.hasWIPLabel(card) {
		var resp interface{}
		if err := c.api.Post("cards/"+card.ID+"/idLabels", api.Arguments{"value": c.wipLabelID}, &resp); err != nil {
			return nil, "", c.wrapErr("failed to mark task as in progress", err)
		}
		card.IDLabels = append(card.IDLabels, c.wipLabelID)
	}
	task := c.taskFromCard(card, projectName)
	return task, fmt.Sprintf("Task '%s' in project '%s' marked as in progress.", title, projectName), nil
}

// MarkAsCompleted clears the WIP label and sets the completion flag.
func (c *Client) MarkAsCompleted(ctx context.Context, projectName, title string) (*service.Task, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	if c.hasWIPLabel(card) {
		if err := c.removeWIPLabel(card); err != nil {
			return nil, "", c.wrapErr("failed to mark task as completed", err)
		}
	}
	if err := c.setDueComplete(card, true); err != nil {
		return nil, "", c.wrapErr("failed to mark task as completed", err)
	}
	task := c.taskFromCard(card, projectName)
	return task, fmt.Sprintf("Task '%s' in project '%s' has been completed.", title, projectName), nil
}

// UpdateTaskDescription appends a timestamped entry to the card description.
func (c *Client) UpdateTaskDescription(ctx context.Context, projectName, title, description string) (*service.Task, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	updated := service.AppendDescription(card.Desc, description, time.Now())
	var resp interface{}
	if err := c.api.Put("cards/"+card.ID, api.Arguments{"desc": updated}, &resp); err != nil {
		return nil, "", c.wrapErr("failed to update task description", err)
	}
	card.Desc = updated
	task := c.taskFromCard(card, projectName)
	return task, fmt.Sprintf("Description updated for task '%s' in project '%s'.", title, projectName), nil
}

// UpdateTaskWithChecklist appends items to the card's well-known checklist,
// creating the checklist first when absent.
func (c *Client) UpdateTaskWithChecklist(ctx context.Context, projectName, title string, items []string) (*service.Task, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	checklist, err := c.findChecklist(card)
	if err != nil {
		return nil, "", c.wrapErr("failed to update task checklist", err)
	}

	created := false
	if checklist == nil {
		var cl api.Checklist
		args := api.Arguments{"idCard": card.ID, "name": service.DefaultChecklistName}
		if err := c.api.Post("checklists", args, &cl); err != nil {
			return nil, "", c.wrapErr("failed to create checklist", err)
		}
		checklist = &cl
		created = true
	}
	for _, item := range items {
		var resp interface{}
		if err := c.api.Post("checklists/"+checklist.ID+"/checkItems", api.Arguments{"name": item}, &resp); err != nil {
			return nil, "", c.wrapErr("failed to add checklist item", err)
		}
	}

	task := c.taskFromCard(card, projectName)
	if created {
		return task, fmt.Sprintf("New checklist created for task '%s' in project '%s'.", title, projectName), nil
	}
	return task, fmt.Sprintf("Items appended to existing checklist in task '%s' in project '%s'.", title, projectName), nil
}

// CompleteChecklistItem checks the first item matching the name exactly.
func (c *Client) CompleteChecklistItem(ctx context.Context, projectName, title, itemName string) (*service.Task, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	checklist, err := c.findChecklist(card)
	if err != nil {
		return nil, "", c.wrapErr("failed to complete checklist item", err)
	}
	if checklist == nil {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	for _, item := range checklist.CheckItems {
		if item.Name == itemName {
			var resp interface{}
			path := "cards/" + card.ID + "/checkItem/" + item.ID
			if err := c.api.Put(path, api.Arguments{"state": "complete"}, &resp); err != nil {
				return nil, "", c.wrapErr("failed to complete checklist item", err)
			}
			task := c.taskFromCard(card, projectName)
			msg := fmt.Sprintf("Checklist item '%s' in task '%s' in project '%s' completed.", itemName, title, projectName)
			return task, msg, nil
		}
	}
	return nil, "", &service.ChecklistItemNotFoundError{ItemName: itemName, Title: title}
}

// GetNextUncheckedChecklistItem returns the first incomplete item in list
// order.
func (c *Client) GetNextUncheckedChecklistItem(ctx context.Context, projectName, title string) (*service.ChecklistItem, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}
	checklist, err := c.findChecklist(card)
	if err != nil {
		return nil, "", c.wrapErr("failed to get next unchecked checklist item", err)
	}
	if checklist == nil {
		return nil, "", &service.ChecklistNotFoundError{ChecklistName: service.DefaultChecklistName, Title: title}
	}
	for _, item := range checklist.CheckItems {
		if item.State != "complete" {
			found := &service.ChecklistItem{ID: item.ID, Name: item.Name, Checked: false}
			return found, fmt.Sprintf("Next unchecked checklist item for task '%s': %s", title, item.Name), nil
		}
	}
	return nil, "", &service.ChecklistItemNotFoundError{ItemName: "none", Title: title}
}

// GetTasks returns summaries for all cards in the project list matching the
// filter. A missing list is an empty result, not an error.
func (c *Client) GetTasks(ctx context.Context, projectName string, filter service.Filter) ([]service.TaskSummary, string, error) {
	list, err := c.findList(projectName)
	if err != nil {
		return nil, "", err
	}
	if list == nil {
		return nil, fmt.Sprintf("No tasks found in project '%s'.", projectName), nil
	}
	cards, err := c.listCards(list.ID)
	if err != nil {
		return nil, "", c.wrapErr("failed to get tasks", err)
	}

	var filtered []service.TaskSummary
	for _, card := range cards {
		status := c.cardStatus(card)
		if filter.Matches(status) {
			filtered = append(filtered, service.TaskSummary{
				ID:          card.ID,
				Title:       card.Name,
				Description: card.Desc,
				Status:      status,
			})
		}
	}
	return filtered, service.TasksMessage(len(filtered), filter, projectName), nil
}

// GetTaskStatus derives the status of a single card.
func (c *Client) GetTaskStatus(ctx context.Context, projectName, title string) (service.Status, string, error) {
	card, err := c.findCard(projectName, title)
	if err != nil {
		return "", "", err
	}
	status := c.cardStatus(card)
	return status, fmt.Sprintf("Task '%s' status: %s", title, status), nil
}

// SetTaskStatus clears both markers before applying the target state, so
// repeated calls converge to the same remote state.
func (c *Client) SetTaskStatus(ctx context.Context, projectName, title string, status service.Status) (*service.Task, string, error) {
	if _, err := service.ParseStatus(string(status)); err != nil {
		return nil, "", err
	}
	card, err := c.findCard(projectName, title)
	if err != nil {
		return nil, "", err
	}

	if c.hasWIPLabel(card) {
		if err := c.removeWIPLabel(card); err != nil {
			return nil, "", c.wrapErr("failed to set task status", err)
		}
	}
	if card.DueComplete {
		if err := c.setDueComplete(card, false); err != nil {
			return nil, "", c.wrapErr("failed to set task status", err)
		}
	}

	switch status {
	case service.StatusWip:
		var resp interface{}
		if err := c.api.Post("cards/"+card.ID+"/idLabels", api.Arguments{"value": c.wipLabelID}, &resp); err != nil {
			return nil, "", c.wrapErr("failed to set task status", err)
		}
		card.IDLabels = append(card.IDLabels, c.wipLabelID)
	case service.StatusDone:
		if err := c.setDueComplete(card, true); err != nil {
			return nil, "", c.wrapErr("failed to set task status", err)
		}
	}

	task := c.taskFromCard(card, projectName)
	return task, fmt.Sprintf("Task '%s' status set to '%s'", title, status), nil
}

// DeleteAllTasks removes every card in the project list. There is no
// transactional guarantee: a failure midway leaves prior deletions in place,
// and a retry removes the rest.
func (c *Client) DeleteAllTasks(ctx context.Context, projectName string) (string, error) {
	list, err := c.findList(projectName)
	if err != nil {
		return "", err
	}
	if list == nil {
		return fmt.Sprintf("Project '%s' not found.", projectName), nil
	}
	cards, err := c.listCards(list.ID)
	if err != nil {
		return "", c.wrapErr("failed to delete tasks", err)
	}
	for _, card := range cards {
		var resp interface{}
		if err := c.api.Delete("cards/"+card.ID, api.Defaults(), &resp); err != nil {
			return "", c.wrapErr("failed to delete tasks", err)
		}
	}
	c.log.Debug("deleted all cards", "project", projectName, "count", len(cards))
	return fmt.Sprintf("All tasks in project '%s' have been deleted.", projectName), nil
}

// findList resolves the board list matching the project name exactly.
// Returns nil without error when absent; callers decide how a missing
// project surfaces. The list is resolved per call rather than cached on the
// client, so concurrent calls against different projects do not race.
func (c *Client) findList(projectName string) (*api.List, error) {
	var lists []*api.List
	if err := c.api.Get("boards/"+c.boardID+"/lists", api.Defaults(), &lists); err != nil {
		return nil, c.wrapErr("failed to list board lists", err)
	}
	for _, l := range lists {
		if l.Name == projectName {
			return l, nil
		}
	}
	return nil, nil
}

// listCards fetches the cards of a list in board order.
func (c *Client) listCards(listID string) ([]*api.Card, error) {
	var cards []*api.Card
	if err := c.api.Get("lists/"+listID+"/cards", cardFields, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// findCard resolves a card by exact title within the project list.
func (c *Client) findCard(projectName, title string) (*api.Card, error) {
	list, err := c.findList(projectName)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, &service.TaskNotFoundError{ProjectName: projectName, Title: title}
	}
	cards, err := c.listCards(list.ID)
	if err != nil {
		return nil, c.wrapErr("failed to list cards", err)
	}
	for _, card := range cards {
		if card.Name == title {
			return card, nil
		}
	}
	return nil, &service.TaskNotFoundError{ProjectName: projectName, Title: title}
}

// findChecklist fetches the card's well-known checklist, or nil.
func (c *Client) findChecklist(card *api.Card) (*api.Checklist, error) {
	var checklists []*api.Checklist
	if err := c.api.Get("cards/"+card.ID+"/checklists", api.Defaults(), &checklists); err != nil {
		return nil, err
	}
	for _, cl := range checklists {
		if cl.Name == service.DefaultChecklistName {
			return cl, nil
		}
	}
	return nil, nil
}

func (c *Client) hasWIPLabel(card *api.Card) bool {
	for _, id := range card.IDLabels {
		if id == c.wipLabelID {
			return true
		}
	}
	return false
}

func (c *Client) removeWIPLabel(card *api.Card) error {
	var resp interface{}
	if err := c.api.Delete("cards/"+card.ID+"/idLabels/"+c.wipLabelID, api.Defaults(), &resp); err != nil {
		return err
	}
	kept := card.IDLabels[:0]
	for _, id := range card.IDLabels {
		if id != c.wipLabelID {
			kept = append(kept, id)
		}
	}
	card.IDLabels = kept
	return nil
}

func (c *Client) setDueComplete(card *api.Card, complete bool) error {
	var resp interface{}
	value := "false"
	if complete {
		value = "true"
	}
	if err := c.api.Put("cards/"+card.ID, api.Arguments{"dueComplete": value}, &resp); err != nil {
		return err
	}
	card.DueComplete = complete
	return nil
}

// cardStatus derives the task status from the card's markers.
func (c *Client) cardStatus(card *api.Card) service.Status {
	return service.DeriveStatus(card.DueComplete, c.hasWIPLabel(card))
}

func (c *Client) taskFromCard(card *api.Card, projectName string) *service.Task {
	return &service.Task{
		ID:          card.ID,
		Title:       card.Name,
		Description: card.Desc,
		ProjectName: projectName,
		Status:      c.cardStatus(card),
	}
}

// wrapErr translates an unexpected remote failure into the single
// connection-error kind callers are allowed to see.
func (c *Client) wrapErr(msg string, err error) error {
	return &service.ConnectionError{Backend: BackendName, Err: fmt.Errorf("%s: %w", msg, err)}
}
