package diagnosis

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient diagnoses from the narrative text alone. It is the fallback
// strategy for deployments without a video-capable model: the rendered mp4
// is ignored and the model reasons over the narrated event stream.
type OpenAIClient struct {
	client *openai.Client
	model  string
	opts   GenerationOptions
}

func NewOpenAI(apiKey, model string, opts GenerationOptions) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		opts:   opts,
	}
}

func (c *OpenAIClient) Diagnose(ctx context.Context, video []byte, narrative string) (Result, error) {
	if narrative == "" {
		return Result{}, fmt.Errorf("narrative-only diagnosis needs a non-empty narrative")
	}

	seed := c.opts.Seed
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: SuggestionPrompt + "\n\nWhat the user did, step by step:\n" + narrative},
		},
		MaxTokens:   c.opts.MaxOutputTokens,
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
		Seed:        &seed,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("openai returned no choices")
	}
	return Result{Choices: splitSuggestions(resp.Choices[0].Message.Content)}, nil
}
