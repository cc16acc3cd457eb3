package completion

import "context"

// Completer sends the grounding prompt and the user's question to a chat
// model and returns the answer text.
//
// The two implementations fail differently. Local never returns an error and
// puts the failure text in the answer instead. Hosted returns the error.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

func conversation(systemPrompt, question string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: question},
	}
}
