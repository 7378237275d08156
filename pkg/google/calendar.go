package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
	appLog "github.com/harrisonrobin/snapcal/pkg/log"
	"github.com/harrisonrobin/snapcal/pkg/model"
	"github.com/harrisonrobin/snapcal/pkg/util"
)

// CalendarClient is a Google Calendar API client bound to one calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID}
}

func (c *CalendarClient) CalendarID() string {
	return c.calendarID
}

// CreateEvent inserts the event. Recurrence lines that do not parse are
// dropped with a warning rather than failing the write.
func (c *CalendarClient) CreateEvent(ctx context.Context, ev *model.Event) (*calendar.Event, error) {
	const op = "create event"
	if c == nil || c.srv == nil {
		return nil, apperr.New(apperr.AuthError, op, errors.New("not logged in"))
	}

	event, err := util.ConvertEventToCalendarEvent(ev)
	if err != nil {
		return nil, apperr.New(apperr.RemoteWriteError, op, err)
	}
	if len(event.Recurrence) > 0 {
		valid, invalid := util.SplitRecurrence(event.Recurrence)
		if len(invalid) > 0 {
			appLog.Warn("dropping invalid recurrence rules", "rules", invalid)
		}
		event.Recurrence = valid
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, remoteError(op, err)
	}
	return created, nil
}

// ResolveCalendarID maps a calendar name to its id. "primary" and names
// that already look like ids are returned as-is when no summary matches.
func ResolveCalendarID(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	if name == "" || name == "primary" {
		return "primary", nil
	}

	var calendarID string
	err := srv.CalendarList.List().Context(ctx).Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			if item.Summary == name || item.Id == name {
				calendarID = item.Id
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	if calendarID == "" {
		return "", fmt.Errorf("calendar '%s' not found", name)
	}
	return calendarID, nil
}

var errStopPaging = errors.New("stop paging")

// remoteError turns an API failure into a RemoteWriteError carrying the
// response body when there is one.
func remoteError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return apperr.New(apperr.AuthError, op, fmt.Errorf("status %d: %s", gerr.Code, bodyOrMessage(gerr)))
		}
		return apperr.New(apperr.RemoteWriteError, op, fmt.Errorf("status %d: %s", gerr.Code, bodyOrMessage(gerr)))
	}
	return apperr.New(apperr.RemoteWriteError, op, err)
}

func bodyOrMessage(gerr *googleapi.Error) string {
	if gerr.Body != "" {
		return gerr.Body
	}
	return gerr.Message
}
