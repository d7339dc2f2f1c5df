package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}

}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature: genai.Ptr[float32](0.0),
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", classify(err, c.modelName)
	}
	return result.Text(), nil
}

// classify maps the transport's access-denied shapes onto the shared sentinel.
func classify(err error, modelName string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: grant access to %s: %v", llm.ErrPermissionDenied, modelName, err)
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.PermissionDenied {
		return fmt.Errorf("%w: grant access to %s: %v", llm.ErrPermissionDenied, modelName, err)
	}
	return err
}

func closeClient(ctx context.Context, client *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	client.client = nil
	client.modelName = ""
}
