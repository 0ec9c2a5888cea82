package gateway

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend serves models through the OpenAI chat completions API.
// Passing a BaseURL lets it double as the Backend for any
// OpenAI-compatible provider (DeepSeek, Together, OpenRouter, xAI
// Grok), which is how this gateway avoids writing one REST client per
// OpenAI-compatible vendor.
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend builds a backend against the public OpenAI API.
func NewOpenAIBackend(apiKey string) *OpenAIBackend {
	return &OpenAIBackend{client: openai.NewClient(apiKey)}
}

// NewOpenAICompatibleBackend builds a backend against a third-party
// OpenAI-compatible endpoint (baseURL should include the "/v1" suffix
// the provider expects).
func NewOpenAICompatibleBackend(apiKey, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg)}
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (b *OpenAIBackend) Chat(ctx context.Context, model string, messages []Message, params Params) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, classifyOpenAIError(model, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &Error{Kind: ErrorKindUnknown, Model: model, Err: errors.New("openai returned no choices")}
	}

	choice := resp.Choices[0]
	return Response{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func classifyOpenAIError(model string, err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: ErrorKindAuth, Model: model, Err: err}
		case http.StatusTooManyRequests:
			return &Error{Kind: ErrorKindRateLimited, Model: model, Err: err}
		case http.StatusNotFound:
			return &Error{Kind: ErrorKindInvalidModel, Model: model, Err: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &Error{Kind: ErrorKindTimeout, Model: model, Err: err}
		default:
			if apiErr.HTTPStatusCode >= 500 {
				return &Error{Kind: ErrorKindTransient, Model: model, Err: err}
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrorKindTimeout, Model: model, Err: err}
	}
	return &Error{Kind: ErrorKindTransient, Model: model, Err: err}
}
