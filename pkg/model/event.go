package model

import (
	"errors"
	"fmt"
	"strings"
)

// Event is the calendar event the extractor produces. The struct tags drive
// both decoding and the JSON schema sent with the extraction request.
type Event struct {
	Summary    string        `json:"summary" description:"A brief summary of the event."`
	Start      EventDateTime `json:"start" description:"The start time of the event."`
	End        EventDateTime `json:"end" description:"The end time of the event."`
	Status     string        `json:"status,omitempty" enum:"confirmed,tentative,cancelled" description:"Current status of the event."`
	Location   string        `json:"location,omitempty" description:"Location where the event will take place."`
	Attendees  []Attendee    `json:"attendees,omitempty" description:"List of attendees for the event."`
	Visibility string        `json:"visibility,omitempty" enum:"default,public,private,confidential" description:"Visibility level of the event."`
	Recurrence []string      `json:"recurrence,omitempty" description:"RFC 5545 RRULE lines, only when the summary states the event repeats."`
}

type EventDateTime struct {
	DateTime string `json:"dateTime" description:"The date and time in RFC 3339 format."`
	TimeZone string `json:"timeZone" description:"The IANA time zone of the event."`
}

type Attendee struct {
	Email          string `json:"email" description:"Email address of the attendee."`
	Optional       bool   `json:"optional,omitempty" description:"Indicates if the attendee is optional."`
	DisplayName    string `json:"displayName,omitempty" description:"Display name of the attendee."`
	ResponseStatus string `json:"responseStatus,omitempty" enum:"needsAction,declined,tentative,accepted" description:"Response status of the attendee."`
}

var (
	EventStatuses    = []string{"confirmed", "tentative", "cancelled"}
	EventVisibility  = []string{"default", "public", "private", "confidential"}
	ResponseStatuses = []string{"needsAction", "declined", "tentative", "accepted"}
)

// Validate checks required fields and enum values. Optional fields may be
// empty.
func (e *Event) Validate() error {
	if e == nil {
		return errors.New("event is nil")
	}
	if strings.TrimSpace(e.Summary) == "" {
		return errors.New("event summary is required")
	}
	if err := e.Start.validate("start"); err != nil {
		return err
	}
	if err := e.End.validate("end"); err != nil {
		return err
	}
	if err := checkEnum("status", e.Status, EventStatuses); err != nil {
		return err
	}
	if err := checkEnum("visibility", e.Visibility, EventVisibility); err != nil {
		return err
	}
	for i, a := range e.Attendees {
		if strings.TrimSpace(a.Email) == "" {
			return fmt.Errorf("attendee %d: email is required", i)
		}
		if err := checkEnum("responseStatus", a.ResponseStatus, ResponseStatuses); err != nil {
			return fmt.Errorf("attendee %d: %w", i, err)
		}
	}
	return nil
}

func (d EventDateTime) validate(field string) error {
	if d.DateTime == "" {
		return fmt.Errorf("event %s.dateTime is required", field)
	}
	if d.TimeZone == "" {
		return fmt.Errorf("event %s.timeZone is required", field)
	}
	return nil
}

func checkEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q", field, value)
}
