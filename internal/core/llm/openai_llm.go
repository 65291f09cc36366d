package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/linkstash-app/linkstash/internal/core"
)

type OpenAILLM struct {
	client    *openai.Client
	modelName string
}

func NewOpenAILLM(apiKey, modelName string) *OpenAILLM {
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAILLM{client: openai.NewClient(apiKey), modelName: modelName}
}

func (o *OpenAILLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

var _ core.LLMProvider = (*OpenAILLM)(nil)
