package embedder

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig points at an OpenAI-compatible /embeddings endpoint, such as a
// text-embeddings-inference server hosting multilingual-e5-small.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// HTTPClient overrides the transport; nil uses the SDK default.
	HTTPClient openai.HTTPDoer
}

// OpenAIModel encodes text through the embeddings API.
type OpenAIModel struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIModel builds the API client without contacting the server.
func NewOpenAIModel(cfg OpenAIConfig) (*OpenAIModel, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model name is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &OpenAIModel{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
	}, nil
}

func (m *OpenAIModel) Encode(ctx context.Context, input string) ([]float32, error) {
	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:          []string{input},
		Model:          m.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return resp.Data[0].Embedding, nil
}

// NewOpenAILoader returns a Loader that builds the client and runs one warm-up
// encode, so an unreachable server or unknown model surfaces as a load failure.
func NewOpenAILoader(cfg OpenAIConfig) Loader {
	return func(ctx context.Context) (Model, error) {
		model, err := NewOpenAIModel(cfg)
		if err != nil {
			return nil, err
		}

		if _, err := model.Encode(ctx, QueryPrefix+"warmup"); err != nil {
			return nil, fmt.Errorf("warm up %s: %w", cfg.Model, err)
		}

		return model, nil
	}
}
