package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicBackend serves Claude models via langchaingo's Anthropic
// client, which handles the Messages API request/response shape so
// this package does not have to hand-roll it.
type AnthropicBackend struct {
	llm *anthropic.LLM
}

// NewAnthropicBackend builds a backend bound to a single API key. The
// model is selected per-call from the provider-stripped model name
// passed to Chat.
func NewAnthropicBackend(apiKey string) (*AnthropicBackend, error) {
	llm, err := anthropic.New(anthropic.WithToken(apiKey))
	if err != nil {
		return nil, err
	}
	return &AnthropicBackend{llm: llm}, nil
}

func toLangchainMessages(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		var kind llms.ChatMessageType
		switch strings.ToLower(m.Role) {
		case "system":
			kind = llms.ChatMessageTypeSystem
		case "assistant":
			kind = llms.ChatMessageTypeAI
		default:
			kind = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(kind, m.Content))
	}
	return out
}

func genOptions(params Params) []llms.CallOption {
	var opts []llms.CallOption
	if params.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.TopP != nil {
		opts = append(opts, llms.WithTopP(float64(*params.TopP)))
	}
	if params.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}
	return opts
}

func (b *AnthropicBackend) Chat(ctx context.Context, model string, messages []Message, params Params) (Response, error) {
	opts := append(genOptions(params), llms.WithModel(model))
	resp, err := b.llm.GenerateContent(ctx, toLangchainMessages(messages), opts...)
	if err != nil {
		return Response{}, classifyLangchainError(model, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &Error{Kind: ErrorKindUnknown, Model: model, Err: errors.New("anthropic returned no choices")}
	}

	choice := resp.Choices[0]
	return Response{
		Text:         choice.Content,
		Model:        model,
		FinishReason: choice.StopReason,
		Usage:        usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}

func usageFromGenerationInfo(info map[string]any) Usage {
	var u Usage
	if info == nil {
		return u
	}
	if v, ok := info["PromptTokens"].(int); ok {
		u.PromptTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		u.CompletionTokens = v
	}
	if v, ok := info["TotalTokens"].(int); ok {
		u.TotalTokens = v
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

func classifyLangchainError(model string, err error) *Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key"):
		return &Error{Kind: ErrorKindAuth, Model: model, Err: err}
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return &Error{Kind: ErrorKindRateLimited, Model: model, Err: err}
	case strings.Contains(msg, "context deadline") || strings.Contains(msg, "timeout"):
		return &Error{Kind: ErrorKindTimeout, Model: model, Err: err}
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return &Error{Kind: ErrorKindInvalidModel, Model: model, Err: err}
	default:
		return &Error{Kind: ErrorKindTransient, Model: model, Err: err}
	}
}
