package completion

import (
	"context"
	"errors"

	"grounded-qa/config"
	"grounded-qa/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// LocalErrorPrefix starts every answer Local produces for a failed call.
const LocalErrorPrefix = "Error calling local model: "

// Local talks to an OpenAI-compatible server on the loopback interface,
// e.g. LM Studio.
type Local struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewLocal(cfg config.LocalLLMConfig) *Local {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithHeaderDel("authorization"),
		option.WithMaxRetries(0),
	)
	return &Local{client: client, model: cfg.Model, temperature: cfg.Temperature}
}

// Answer always returns a string. A failed call yields
// LocalErrorPrefix followed by the error text.
func (l *Local) Answer(ctx context.Context, systemPrompt, question string) string {
	answer, err := l.call(ctx, systemPrompt, question)
	if err != nil {
		logger.Error(err, "%v: local model call failed", config.ModuleCompletion)
		return LocalErrorPrefix + err.Error()
	}
	return answer
}

// Complete implements Completer. The error is always nil.
func (l *Local) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	return l.Answer(ctx, systemPrompt, question), nil
}

func (l *Local) call(ctx context.Context, systemPrompt, question string) (string, error) {
	req := chatRequest{
		Model:       l.model,
		Messages:    conversation(systemPrompt, question),
		Temperature: l.temperature,
		Stream:      false,
	}
	var out chatResponse
	if err := l.client.Post(ctx, "chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return out.Choices[0].Message.Content, nil
}
