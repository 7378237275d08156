package model

import (
	"errors"
	"testing"
)

func validEvent() *Event {
	return &Event{
		Summary: "Meeting with John",
		Start:   EventDateTime{DateTime: "2026-10-19T10:00:00+02:00", TimeZone: "Europe/Berlin"},
		End:     EventDateTime{DateTime: "2026-10-19T11:00:00+02:00", TimeZone: "Europe/Berlin"},
	}
}

func TestEventValidate(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("Expected valid event, got %v", err)
	}

	cases := map[string]func(e *Event){
		"missing summary":     func(e *Event) { e.Summary = " " },
		"missing start time":  func(e *Event) { e.Start.DateTime = "" },
		"missing end zone":    func(e *Event) { e.End.TimeZone = "" },
		"bad status":          func(e *Event) { e.Status = "maybe" },
		"bad visibility":      func(e *Event) { e.Visibility = "secret" },
		"attendee no email":   func(e *Event) { e.Attendees = []Attendee{{DisplayName: "John"}} },
		"attendee bad status": func(e *Event) { e.Attendees = []Attendee{{Email: "j@x.org", ResponseStatus: "yes"}} },
	}
	for name, mutate := range cases {
		e := validEvent()
		mutate(e)
		if err := e.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	e := validEvent()
	e.Status = "tentative"
	e.Visibility = "private"
	e.Attendees = []Attendee{{Email: "john@example.org", ResponseStatus: "needsAction"}}
	if err := e.Validate(); err != nil {
		t.Errorf("Expected enums to be accepted, got %v", err)
	}
}

func TestIntentValidate(t *testing.T) {
	if err := (Intent{Type: IntentEvent, Details: "Meeting with John at 10:00 AM"}).Validate(); err != nil {
		t.Errorf("Expected valid intent, got %v", err)
	}
	if err := (Intent{}).Validate(); !errors.Is(err, ErrNoIntent) {
		t.Errorf("Expected ErrNoIntent for empty intent, got %v", err)
	}
	if err := (Intent{Type: "reminder", Details: "x"}).Validate(); err == nil {
		t.Errorf("Expected error for unknown type")
	}
	if err := (Intent{Type: IntentTask}).Validate(); err == nil {
		t.Errorf("Expected error for missing details")
	}
}

func TestFindList(t *testing.T) {
	lists := []TaskList{{ID: "a", Title: "Groceries"}, {ID: "b", Title: "Work"}}

	if l, ok := FindList(lists, "Work"); !ok || l.ID != "b" {
		t.Errorf("Expected list b, got %+v (found=%v)", l, ok)
	}
	if _, ok := FindList(lists, "work"); ok {
		t.Errorf("Expected case-sensitive match to fail")
	}
	if got := ListTitles(lists); len(got) != 2 || got[0] != "Groceries" {
		t.Errorf("Unexpected titles %v", got)
	}
}

func TestTaskDraftValidate(t *testing.T) {
	if err := (&TaskDraft{Title: "Buy milk", TaskListName: "Groceries"}).Validate(); err != nil {
		t.Errorf("Expected valid draft, got %v", err)
	}
	if err := (&TaskDraft{Title: "Buy milk"}).Validate(); err == nil {
		t.Errorf("Expected error for missing list name")
	}
}
