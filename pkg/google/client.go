package google

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/snapcal/pkg/auth"
)

// Clients bundles the two API clients one run needs.
type Clients struct {
	Calendar *CalendarClient
	Tasks    *TasksClient
}

// NewClients authenticates and resolves calendarName to an id.
func NewClients(ctx context.Context, calendarName string) (*Clients, error) {
	httpClient, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}
	return NewClientsWithHTTP(ctx, calendarName, option.WithHTTPClient(httpClient))
}

// NewClientsWithHTTP builds the clients from explicit options, e.g. an
// endpoint override in tests.
func NewClientsWithHTTP(ctx context.Context, calendarName string, opts ...option.ClientOption) (*Clients, error) {
	calSrv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	taskSrv, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Tasks client: %w", err)
	}

	calendarID, err := ResolveCalendarID(ctx, calSrv, calendarName)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Calendar: NewCalendarClient(calSrv, calendarID),
		Tasks:    NewTasksClient(taskSrv),
	}, nil
}
