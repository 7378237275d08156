package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeContent parses a model's message content as JSON. Models sometimes
// wrap the object in a fence or a leading sentence, so when the content does
// not parse as-is it is retried with its first and last lines removed.
func DecodeContent[T any](content string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return zero, errors.New("empty model output")
	}

	var v T
	rawErr := json.Unmarshal([]byte(trimmed), &v)
	if rawErr == nil {
		return v, nil
	}

	inner, ok := stripFirstLastLines(trimmed)
	if !ok {
		return zero, fmt.Errorf("model output is not JSON: %w", rawErr)
	}
	var w T
	if err := json.Unmarshal([]byte(inner), &w); err != nil {
		return zero, fmt.Errorf("model output is not JSON: %w", errors.Join(rawErr, err))
	}
	return w, nil
}

func stripFirstLastLines(s string) (string, bool) {
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return "", false
	}
	return strings.Join(lines[1:len(lines)-1], "\n"), true
}
