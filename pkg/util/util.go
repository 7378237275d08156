package util

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/snapcal/pkg/model"
)

const rrulePrefix = "RRULE:"

// ConvertEventToCalendarEvent maps an extracted event onto the Calendar API
// type. Start and end are copied verbatim: the API resolves dateTime against
// timeZone, so nothing here reinterprets them.
func ConvertEventToCalendarEvent(ev *model.Event) (*calendar.Event, error) {
	if ev == nil {
		return nil, fmt.Errorf("could not convert nil Event")
	}

	event := &calendar.Event{
		Summary:    ev.Summary,
		Location:   ev.Location,
		Status:     ev.Status,
		Visibility: ev.Visibility,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.DateTime,
			TimeZone: ev.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.DateTime,
			TimeZone: ev.End.TimeZone,
		},
		Recurrence: ev.Recurrence,
	}

	for _, a := range ev.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			Optional:       a.Optional,
			ResponseStatus: a.ResponseStatus,
		})
	}

	return event, nil
}

// ConvertDraftToTask builds the Tasks API body for a new task.
func ConvertDraftToTask(d *model.TaskDraft) *tasks.Task {
	return &tasks.Task{Title: d.Title}
}

// SplitRecurrence separates RRULE lines that parse from those that do not.
// Lines may omit the "RRULE:" prefix; returned valid lines always carry it.
func SplitRecurrence(lines []string) (valid []string, invalid []string) {
	for _, line := range lines {
		body := strings.TrimSpace(line)
		if body == "" {
			continue
		}
		body = strings.TrimPrefix(body, rrulePrefix)
		if _, err := rrule.StrToRRule(body); err != nil {
			invalid = append(invalid, line)
			continue
		}
		valid = append(valid, rrulePrefix+body)
	}
	return valid, invalid
}

// Describe is a one-line human summary of an event, used in status output.
func Describe(ev *model.Event) string {
	var b strings.Builder
	b.WriteString(ev.Summary)
	b.WriteString(" (")
	b.WriteString(ev.Start.DateTime)
	if ev.Start.TimeZone != "" {
		b.WriteString(" " + ev.Start.TimeZone)
	}
	b.WriteString(")")
	if ev.Location != "" {
		b.WriteString(" @ " + ev.Location)
	}
	return b.String()
}
