package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"

	"github.com/harrisonrobin/snapcal/pkg/model"
)

func TestParseEventTime(t *testing.T) {
	cases := []struct {
		in   model.EventDateTime
		want time.Time
	}{
		{model.EventDateTime{DateTime: "2026-10-19T10:00:00+02:00"}, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)},
		{model.EventDateTime{DateTime: "2026-10-19T10:00:00", TimeZone: "Europe/Berlin"}, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)},
		{model.EventDateTime{DateTime: "2026-10-19T10:00"}, time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseEventTime(c.in)
		if err != nil {
			t.Errorf("ParseEventTime(%+v) failed: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseEventTime(%+v) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseEventTime(model.EventDateTime{DateTime: "tomorrow"}); err == nil {
		t.Errorf("Expected error for unparseable date-time")
	}
	if _, err := ParseEventTime(model.EventDateTime{DateTime: "2026-10-19T10:00:00", TimeZone: "Mars/Olympus"}); err == nil {
		t.Errorf("Expected error for unknown time zone")
	}
}

func TestEncodeICS(t *testing.T) {
	ev := &model.Event{
		Summary:    "Meeting with John",
		Start:      model.EventDateTime{DateTime: "2026-10-19T10:00:00", TimeZone: "Europe/Berlin"},
		End:        model.EventDateTime{DateTime: "2026-10-19T11:00:00", TimeZone: "Europe/Berlin"},
		Location:   "Room 4",
		Status:     "confirmed",
		Visibility: "private",
		Attendees:  []model.Attendee{{Email: "john@example.org"}},
		Recurrence: []string{"RRULE:FREQ=WEEKLY;COUNT=3"},
	}

	out, err := EncodeICS(ev, time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EncodeICS failed: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Meeting with John",
		"LOCATION:Room 4",
		"DTSTART:20261019T080000Z",
		"DTEND:20261019T090000Z",
		"STATUS:CONFIRMED",
		"CLASS:PRIVATE",
		"mailto:john@example.org",
		"RRULE:FREQ=WEEKLY;COUNT=3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Output does not parse as iCalendar: %v", err)
	}
	if n := len(cal.Events()); n != 1 {
		t.Errorf("Expected 1 event, got %d", n)
	}
}

func TestWriteICS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.ics")
	ev := &model.Event{
		Summary: "Dentist",
		Start:   model.EventDateTime{DateTime: "2026-10-20T09:00:00Z", TimeZone: "UTC"},
		End:     model.EventDateTime{DateTime: "2026-10-20T09:30:00Z", TimeZone: "UTC"},
	}
	if err := WriteICS(path, ev, time.Now()); err != nil {
		t.Fatalf("WriteICS failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "SUMMARY:Dentist") {
		t.Errorf("Unexpected file content:\n%s", b)
	}

	bad := *ev
	bad.Start.DateTime = "soon"
	if err := WriteICS(path, &bad, time.Now()); err == nil {
		t.Errorf("Expected error for unparseable start")
	}
}
