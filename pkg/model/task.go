package model

import (
	"errors"
	"strings"
)

// TaskDraft is what the extractor returns for a task intent.
type TaskDraft struct {
	Title        string `json:"title" description:"The title of the task to be generated."`
	TaskListName string `json:"taskListName" description:"The name of the task list where the task will be added."`
}

// Validate checks the required fields.
func (d *TaskDraft) Validate() error {
	if d == nil {
		return errors.New("task is nil")
	}
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("task title is required")
	}
	if strings.TrimSpace(d.TaskListName) == "" {
		return errors.New("task list name is required")
	}
	return nil
}

// TaskList is a named collection of tasks in the remote task service.
type TaskList struct {
	ID    string
	Title string
}

// ListTitles returns the titles in list order.
func ListTitles(lists []TaskList) []string {
	titles := make([]string, 0, len(lists))
	for _, l := range lists {
		titles = append(titles, l.Title)
	}
	return titles
}

// FindList returns the first list whose title equals title exactly
// (case-sensitive).
func FindList(lists []TaskList, title string) (TaskList, bool) {
	for _, l := range lists {
		if l.Title == title {
			return l, true
		}
	}
	return TaskList{}, false
}
