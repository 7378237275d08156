// Package export writes extracted events to iCalendar files.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/harrisonrobin/snapcal/pkg/model"
	"github.com/harrisonrobin/snapcal/pkg/util"
)

const productID = "-//snapcal//snapcal//EN"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseEventTime resolves an extracted date-time. RFC 3339 values carry
// their own offset; values without one are read in the event's time zone.
func ParseEventTime(dt model.EventDateTime) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
		return t, nil
	}
	loc := time.UTC
	if dt.TimeZone != "" {
		l, err := time.LoadLocation(dt.TimeZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown time zone %q: %w", dt.TimeZone, err)
		}
		loc = l
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, dt.DateTime, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", dt.DateTime)
}

// EncodeICS renders ev as a single-event VCALENDAR. now stamps DTSTAMP.
func EncodeICS(ev *model.Event, now time.Time) (string, error) {
	start, err := ParseEventTime(ev.Start)
	if err != nil {
		return "", fmt.Errorf("event start: %w", err)
	}
	end, err := ParseEventTime(ev.End)
	if err != nil {
		return "", fmt.Errorf("event end: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	vev := cal.AddEvent(uuid.NewString() + "@snapcal")
	vev.SetDtStampTime(now)
	vev.SetStartAt(start)
	vev.SetEndAt(end)
	vev.SetSummary(ev.Summary)
	if ev.Location != "" {
		vev.SetLocation(ev.Location)
	}
	if ev.Status != "" {
		vev.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(ev.Status))
	}
	if class := icalClass(ev.Visibility); class != "" {
		vev.SetProperty(ical.ComponentPropertyClass, class)
	}
	for _, a := range ev.Attendees {
		var params []ical.PropertyParameter
		if a.DisplayName != "" {
			params = append(params, ical.WithCN(a.DisplayName))
		}
		vev.AddAttendee(a.Email, params...)
	}
	valid, _ := util.SplitRecurrence(ev.Recurrence)
	for _, rule := range valid {
		vev.AddProperty(ical.ComponentPropertyRrule, strings.TrimPrefix(rule, "RRULE:"))
	}

	return cal.Serialize(), nil
}

// WriteICS encodes ev and writes it to path.
func WriteICS(path string, ev *model.Event, now time.Time) error {
	data, err := EncodeICS(ev, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write ics file: %w", err)
	}
	return nil
}

// icalClass maps calendar visibility onto the CLASS property. "default"
// leaves it unset.
func icalClass(visibility string) string {
	switch visibility {
	case "public":
		return "PUBLIC"
	case "private":
		return "PRIVATE"
	case "confidential":
		return "CONFIDENTIAL"
	default:
		return ""
	}
}
