package gateway

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaBackend serves locally-hosted open-weight models through an
// Ollama server. Neither the server wiring nor the benchmark harness
// constructs one; it serves traffic only once a caller passes it to
// Gateway.Register.
type OllamaBackend struct {
	llm *ollama.LLM
}

// NewOllamaBackend builds a backend against an Ollama server at
// serverURL (e.g. "http://localhost:11434").
func NewOllamaBackend(serverURL string) (*OllamaBackend, error) {
	llm, err := ollama.New(ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, err
	}
	return &OllamaBackend{llm: llm}, nil
}

func (b *OllamaBackend) Chat(ctx context.Context, model string, messages []Message, params Params) (Response, error) {
	opts := append(genOptions(params), llms.WithModel(model))
	resp, err := b.llm.GenerateContent(ctx, toLangchainMessages(messages), opts...)
	if err != nil {
		return Response{}, classifyLangchainError(model, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &Error{Kind: ErrorKindUnknown, Model: model, Err: errors.New("ollama returned no choices")}
	}

	choice := resp.Choices[0]
	return Response{
		Text:         choice.Content,
		Model:        model,
		FinishReason: choice.StopReason,
		Usage:        usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}
