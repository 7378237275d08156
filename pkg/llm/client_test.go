package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
	"github.com/harrisonrobin/snapcal/pkg/capture"
)

// fakeCompletions serves /v1/chat/completions with a fixed content string
// and records the last request body.
type fakeCompletions struct {
	status  int
	content string
	body    map[string]any
	calls   int
}

func (f *fakeCompletions) start(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Unexpected Authorization header %q", got)
		}
		f.calls++
		raw, _ := io.ReadAll(r.Body)
		f.body = map[string]any{}
		if err := json.Unmarshal(raw, &f.body); err != nil {
			t.Errorf("Request body is not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 && f.status != http.StatusOK {
			w.WriteHeader(f.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream failure", "type": "server_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": f.content},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

var testPayload = capture.Payload{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, Width: 1, Height: 1}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	if !apperr.Is(err, apperr.AuthError) {
		t.Errorf("Expected auth error, got %v", err)
	}
}

func TestClassifyEvent(t *testing.T) {
	f := &fakeCompletions{content: `{"type":"event","Details":"Meeting with John at 10:00 AM"}`}
	c := f.start(t)

	intent, err := c.Classify(context.Background(), testPayload)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if intent.Type != "event" || intent.Details != "Meeting with John at 10:00 AM" {
		t.Errorf("Unexpected intent %+v", intent)
	}

	if f.body["model"] != "gpt-4o-mini" {
		t.Errorf("Expected classify model gpt-4o-mini, got %v", f.body["model"])
	}
	raw, _ := json.Marshal(f.body["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Errorf("Expected image data URL in request, got %s", raw)
	}
	if !strings.Contains(string(raw), "'type' can be either 'event' or 'task'") {
		t.Errorf("Expected classifier prompt in request")
	}
}

func TestClassifyFencedResponse(t *testing.T) {
	f := &fakeCompletions{content: "```json\n{\"type\":\"task\",\"Details\":\"Buy milk\"}\n```"}
	c := f.start(t)

	intent, err := c.Classify(context.Background(), testPayload)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if intent.Type != "task" {
		t.Errorf("Expected task intent, got %+v", intent)
	}
}

func TestClassifyFailures(t *testing.T) {
	cases := map[string]*fakeCompletions{
		"unparseable": {content: "I could not find anything useful."},
		"null type":   {content: `{"type": null, "Details": null}`},
		"bad type":    {content: `{"type": "reminder", "Details": "x"}`},
		"http 500":    {status: http.StatusInternalServerError},
	}
	for name, f := range cases {
		c := f.start(t)
		_, err := c.Classify(context.Background(), testPayload)
		if !apperr.Is(err, apperr.ClassificationError) {
			t.Errorf("%s: expected classification error, got %v", name, err)
		}
	}
}

func TestClassifyWithoutScreenshot(t *testing.T) {
	f := &fakeCompletions{content: `{"type":"event","Details":"x"}`}
	c := f.start(t)
	if _, err := c.Classify(context.Background(), capture.Payload{}); !apperr.Is(err, apperr.ClassificationError) {
		t.Errorf("Expected classification error, got %v", err)
	}
	if f.calls != 0 {
		t.Errorf("Expected no request without a screenshot, got %d", f.calls)
	}
}

func TestExtractEvent(t *testing.T) {
	f := &fakeCompletions{content: `{
		"summary": "Meeting with John",
		"start": {"dateTime": "2026-10-19T10:00:00+02:00", "timeZone": "Europe/Berlin"},
		"end": {"dateTime": "2026-10-19T11:00:00+02:00", "timeZone": "Europe/Berlin"},
		"attendees": []
	}`}
	c := f.start(t)
	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

	ev, err := c.ExtractEvent(context.Background(), "Meeting with John at 10:00 AM", now)
	if err != nil {
		t.Fatalf("ExtractEvent failed: %v", err)
	}
	if ev.Summary != "Meeting with John" || ev.Start.TimeZone != "Europe/Berlin" {
		t.Errorf("Unexpected event %+v", ev)
	}

	if f.body["model"] != "gpt-4o" {
		t.Errorf("Expected extract model gpt-4o, got %v", f.body["model"])
	}
	raw, _ := json.Marshal(f.body["messages"])
	if !strings.Contains(string(raw), "2026-10-19T08:30:00Z") || !strings.Contains(string(raw), "Mon") {
		t.Errorf("Expected current date-time and weekday in prompt, got %s", raw)
	}

	rf, _ := f.body["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("Expected json_schema response format, got %v", f.body["response_format"])
	}
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != "event_schema" {
		t.Errorf("Expected schema name event_schema, got %v", js["name"])
	}
	schema, _ := js["schema"].(map[string]any)
	required := toStrings(schema["required"])
	for _, want := range []string{"summary", "start", "end"} {
		if !contains(required, want) {
			t.Errorf("Expected %q to be required, got %v", want, required)
		}
	}
	for _, optional := range []string{"location", "status", "attendees", "visibility"} {
		if contains(required, optional) {
			t.Errorf("Expected %q to be optional", optional)
		}
	}
	props, _ := schema["properties"].(map[string]any)
	start, _ := props["start"].(map[string]any)
	if got := toStrings(start["required"]); !contains(got, "dateTime") || !contains(got, "timeZone") {
		t.Errorf("Expected start to require dateTime and timeZone, got %v", got)
	}
	status, _ := props["status"].(map[string]any)
	if got := toStrings(status["enum"]); len(got) != 3 || got[0] != "confirmed" {
		t.Errorf("Unexpected status enum %v", got)
	}
}

func TestExtractEventInvalid(t *testing.T) {
	cases := map[string]*fakeCompletions{
		"missing end": {content: `{"summary":"x","start":{"dateTime":"2026-10-19T10:00:00Z","timeZone":"UTC"}}`},
		"not json":    {content: "sorry"},
		"http 429":    {status: http.StatusTooManyRequests},
	}
	for name, f := range cases {
		c := f.start(t)
		_, err := c.ExtractEvent(context.Background(), "x", time.Now())
		if !apperr.Is(err, apperr.ExtractionError) {
			t.Errorf("%s: expected extraction error, got %v", name, err)
		}
	}
}

func TestExtractTask(t *testing.T) {
	f := &fakeCompletions{content: `{"title":"Buy milk","taskListName":"Groceries"}`}
	c := f.start(t)

	draft, err := c.ExtractTask(context.Background(), "Buy milk on the way home", []string{"Groceries", "Work"})
	if err != nil {
		t.Fatalf("ExtractTask failed: %v", err)
	}
	if draft.Title != "Buy milk" || draft.TaskListName != "Groceries" {
		t.Errorf("Unexpected draft %+v", draft)
	}

	raw, _ := json.Marshal(f.body["messages"])
	if !strings.Contains(string(raw), "Groceries,Work") {
		t.Errorf("Expected existing list names in prompt, got %s", raw)
	}
	rf, _ := f.body["response_format"].(map[string]any)
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != "task_generation" {
		t.Errorf("Expected schema name task_generation, got %v", js["name"])
	}
}

func toStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
