package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
	"github.com/harrisonrobin/snapcal/pkg/capture"
	"github.com/harrisonrobin/snapcal/pkg/model"
)

const (
	classifyMaxTokens = 300
	extractMaxTokens  = 2048
)

// Config selects the endpoint and models.
type Config struct {
	APIKey        string
	BaseURL       string
	ClassifyModel string
	ExtractModel  string
	HTTPClient    *http.Client
}

// Client runs the classification and extraction calls.
type Client struct {
	api           *openai.Client
	classifyModel string
	extractModel  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.New(apperr.AuthError, "openai", errors.New("no API key configured, run with -set-api-key"))
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	c := &Client{
		api:           openai.NewClientWithConfig(oc),
		classifyModel: cfg.ClassifyModel,
		extractModel:  cfg.ExtractModel,
	}
	if c.classifyModel == "" {
		c.classifyModel = openai.GPT4oMini
	}
	if c.extractModel == "" {
		c.extractModel = openai.GPT4o
	}
	return c, nil
}

// Schemas are derived from the model types so the request and the decoder
// agree.
var (
	eventSchema = sync.OnceValues(func() (*jsonschema.Definition, error) {
		return jsonschema.GenerateSchemaForType(model.Event{})
	})
	taskSchema = sync.OnceValues(func() (*jsonschema.Definition, error) {
		return jsonschema.GenerateSchemaForType(model.TaskDraft{})
	})
)

// Classify asks the vision model whether the screenshot implies an event or
// a task. Only a valid event or task intent is returned without error.
func (c *Client) Classify(ctx context.Context, payload capture.Payload) (model.Intent, error) {
	const op = "classify screenshot"
	if len(payload.Data) == 0 {
		return model.Intent{}, apperr.New(apperr.ClassificationError, op, errors.New("no screenshot"))
	}

	req := openai.ChatCompletionRequest{
		Model: c.classifyModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: classifyPrompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    payload.DataURL(),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		}},
		MaxTokens:   classifyMaxTokens,
		Temperature: 0,
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return model.Intent{}, apperr.New(apperr.ClassificationError, op, err)
	}

	intent, err := DecodeContent[model.Intent](content)
	if err != nil {
		return model.Intent{}, apperr.New(apperr.ClassificationError, op, err)
	}
	if err := intent.Validate(); err != nil {
		return model.Intent{}, apperr.New(apperr.ClassificationError, op, err)
	}
	return intent, nil
}

// ExtractEvent turns intent details into a calendar event. now is injected
// into the prompt so relative dates resolve.
func (c *Client) ExtractEvent(ctx context.Context, details string, now time.Time) (*model.Event, error) {
	const op = "extract event"
	schema, err := eventSchema()
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, fmt.Errorf("build schema: %w", err))
	}
	prompt, err := renderEventPrompt(details, now)
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}

	content, err := c.complete(ctx, c.structuredRequest(prompt, "event_schema", schema))
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	ev, err := DecodeContent[model.Event](content)
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	return &ev, nil
}

// ExtractTask turns intent details into a task title and list name,
// preferring one of the given existing list names.
func (c *Client) ExtractTask(ctx context.Context, details string, lists []string) (*model.TaskDraft, error) {
	const op = "extract task"
	schema, err := taskSchema()
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, fmt.Errorf("build schema: %w", err))
	}
	prompt, err := renderTaskPrompt(details, lists)
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}

	content, err := c.complete(ctx, c.structuredRequest(prompt, "task_generation", schema))
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	draft, err := DecodeContent[model.TaskDraft](content)
	if err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	if err := draft.Validate(); err != nil {
		return nil, apperr.New(apperr.ExtractionError, op, err)
	}
	return &draft, nil
}

func (c *Client) structuredRequest(prompt, name string, schema *jsonschema.Definition) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.extractModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
			},
		}},
		Temperature: 0,
		MaxTokens:   extractMaxTokens,
		TopP:        1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
				Strict: false,
			},
		},
	}
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("completion endpoint returned %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
