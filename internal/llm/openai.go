package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	openaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// OpenAIClient implements Client using the OpenAI Responses API
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI models")
	}

	client := openai.NewClient(openaioption.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}, nil
}

// GenerateJSON sends the prompt as a single user message. The Responses API has no
// schema hint wired here; output is checked against the JSON Schema by the gateway.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: openai.ChatModel(req.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: req.Prompt,
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	})
	if err != nil {
		return "", &Error{Kind: KindAPICall, Model: req.Model, Message: "failed to create response", Cause: err}
	}

	if status := string(resp.Status); status != "completed" {
		return "", &Error{Kind: KindIncomplete, Model: req.Model, Message: fmt.Sprintf("response status %q", status)}
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", &Error{Kind: KindIncomplete, Model: req.Model, Message: "empty response"}
	}
	return text, nil
}

// Close is a no-op; the OpenAI client holds no long-lived connections of its own.
func (c *OpenAIClient) Close() error {
	return nil
}
