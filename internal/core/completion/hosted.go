package completion

import (
	"context"

	"grounded-qa/config"
	"grounded-qa/pkg/apperror"
	"grounded-qa/pkg/apperror/status"
	"grounded-qa/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Hosted calls the OpenAI chat completions API. Failures are returned to
// the caller.
type Hosted struct {
	client openai.Client
	model  string
}

func NewHosted(cfg config.OpenAIConfig) *Hosted {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Key),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Hosted{client: openai.NewClient(opts...), model: cfg.Model}
}

func (h *Hosted) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	resp, err := h.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(h.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		logger.Error(err, "%v: openai call failed", config.ModuleCompletion)
		return "", apperror.Service(status.CompletionServiceFailed, "openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperror.Malformed(status.CompletionMalformedResponse, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
