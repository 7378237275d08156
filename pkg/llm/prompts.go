package llm

import (
	"strings"
	"text/template"
	"time"
)

const classifyPrompt = `You are given a screenshot of a website.
The user wishes to create a calendar event / task based on the information present in the screenshot.
If yes, please provide the detailed summary of the event / task to be created.
The output should be a JSON with keys 'type' and 'Details'.

'type' can be either 'event' or 'task' or null if no relevant entry is found.
'Details' should contain the summary of the event / task with all relevant info. Return null if no relevant info is found.

sample output:
{
  "type": "event",
  "Details": "Meeting with John at 10:00 AM"
}
`

var eventPrompt = template.Must(template.New("event").Parse(`You are given the summary of an event that needs to be added to the calendar of a user. There is no human in the loop to provide additional information.

Please do not assume any information. Only use emails, names, location and other info from the summary given to you and do not use examples / placeholders.

Current date-time is {{.Now}} and is a {{.Weekday}}.

----------
SUMMARY
----------

{{.Details}}

----------
Remember, do not use example email addresses as the system sends out invites to these emails. Leave the attendees empty if there are no email addresses found.
Only set recurrence when the summary says the event repeats.
`))

var taskPrompt = template.Must(template.New("task").Parse(`You are given the summary of a task that needs to be added to the task app of a user. You are also given the lists the user currently has in the task app. Either choose one of these or create a new list as per the summary. If possible prefer an existing one.

----------
SUMMARY
----------

{{.Details}}

----------------
Current Task Lists
----------------

{{.Lists}}
`))

func renderEventPrompt(details string, now time.Time) (string, error) {
	var b strings.Builder
	err := eventPrompt.Execute(&b, struct {
		Now, Weekday, Details string
	}{
		Now:     now.Format(time.RFC3339),
		Weekday: now.Format("Mon"),
		Details: details,
	})
	return b.String(), err
}

func renderTaskPrompt(details string, lists []string) (string, error) {
	var b strings.Builder
	err := taskPrompt.Execute(&b, struct {
		Details, Lists string
	}{
		Details: details,
		Lists:   strings.Join(lists, ","),
	})
	return b.String(), err
}
