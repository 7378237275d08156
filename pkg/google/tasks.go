package google

import (
	"context"
	"errors"

	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
	appLog "github.com/harrisonrobin/snapcal/pkg/log"
	"github.com/harrisonrobin/snapcal/pkg/model"
	"github.com/harrisonrobin/snapcal/pkg/util"
)

// DefaultPageSize is the maxResults used when listing task lists.
const DefaultPageSize = 20

// TasksClient is a Google Tasks API client.
type TasksClient struct {
	srv      *tasks.Service
	pageSize int64
}

func NewTasksClient(srv *tasks.Service) *TasksClient {
	return &TasksClient{srv: srv, pageSize: DefaultPageSize}
}

// WithPageSize overrides maxResults for ListTaskLists.
func (c *TasksClient) WithPageSize(n int64) *TasksClient {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

// ListTaskLists returns every task list, following pageToken until the
// service reports no further page.
func (c *TasksClient) ListTaskLists(ctx context.Context) ([]model.TaskList, error) {
	const op = "list task lists"
	if err := c.ready(op); err != nil {
		return nil, err
	}

	var lists []model.TaskList
	pageToken := ""
	for {
		call := c.srv.Tasklists.List().MaxResults(c.pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, remoteError(op, err)
		}
		for _, item := range resp.Items {
			lists = append(lists, model.TaskList{ID: item.Id, Title: item.Title})
		}
		if resp.NextPageToken == "" || resp.NextPageToken == pageToken {
			break
		}
		pageToken = resp.NextPageToken
	}
	appLog.Debug("fetched task lists", "count", len(lists))
	return lists, nil
}

// CreateTaskList creates a new list and returns it with its assigned id.
func (c *TasksClient) CreateTaskList(ctx context.Context, title string) (model.TaskList, error) {
	const op = "create task list"
	if err := c.ready(op); err != nil {
		return model.TaskList{}, err
	}
	created, err := c.srv.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return model.TaskList{}, remoteError(op, err)
	}
	if created.Id == "" {
		return model.TaskList{}, apperr.New(apperr.RemoteWriteError, op, errors.New("service returned a list without an id"))
	}
	return model.TaskList{ID: created.Id, Title: created.Title}, nil
}

// CreateTask appends a task to the list with the given id.
func (c *TasksClient) CreateTask(ctx context.Context, listID string, draft *model.TaskDraft) (*tasks.Task, error) {
	const op = "create task"
	if err := c.ready(op); err != nil {
		return nil, err
	}
	if listID == "" {
		return nil, apperr.New(apperr.RemoteWriteError, op, errors.New("no task list id"))
	}
	created, err := c.srv.Tasks.Insert(listID, util.ConvertDraftToTask(draft)).Context(ctx).Do()
	if err != nil {
		return nil, remoteError(op, err)
	}
	return created, nil
}

// ready short-circuits calls made without an authenticated service.
func (c *TasksClient) ready(op string) error {
	if c == nil || c.srv == nil {
		appLog.Info("please log in first", "op", op)
		return apperr.New(apperr.AuthError, op, errors.New("not logged in"))
	}
	return nil
}
