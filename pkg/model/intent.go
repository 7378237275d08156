package model

import (
	"errors"
	"fmt"
	"strings"
)

type IntentKind string

const (
	IntentEvent IntentKind = "event"
	IntentTask  IntentKind = "task"
	IntentNone  IntentKind = ""
)

// Intent is the classifier's answer for one screenshot. The JSON keys match
// the classifier prompt; a null type or Details decodes to "".
type Intent struct {
	Type    IntentKind `json:"type"`
	Details string     `json:"Details"`
}

var ErrNoIntent = errors.New("no relevant entry found")

// Validate accepts only event and task intents with non-empty details.
func (i Intent) Validate() error {
	switch i.Type {
	case IntentEvent, IntentTask:
	case IntentNone:
		return ErrNoIntent
	default:
		return fmt.Errorf("unknown intent type %q", string(i.Type))
	}
	if strings.TrimSpace(i.Details) == "" {
		return fmt.Errorf("intent %q has no details", string(i.Type))
	}
	return nil
}
