package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    *openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		c := openai.NewClient(option.WithAPIKey(apikey))
		openaiClient = &llmClient{client: &c, modelName: modelName}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", classify(err, c.modelName)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices for model %s", c.modelName)
	}
	return completion.Choices[0].Message.Content, nil
}

func classify(err error, modelName string) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
		return fmt.Errorf("%w: grant access to %s: %v", llm.ErrPermissionDenied, modelName, err)
	}
	return err
}
