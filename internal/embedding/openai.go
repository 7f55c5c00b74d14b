package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default embedding model. The corpus artifact records which model built it,
// and the pipeline refuses to serve when query and corpus models disagree on
// dimensionality.
const (
	DefaultModel      = "text-embedding-3-small"
	DefaultDimensions = 1536
)

// OpenAIConfig holds configuration for the OpenAI embedder
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional custom endpoint
	Model      string
	Dimensions int
}

// OpenAIEmbedder implements Embedder using the official OpenAI SDK
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates a new OpenAI embedder
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for openai embeddings")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIEmbedder{
		client:     &client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// EmbedTexts embeds all texts in one batched API call.
// Results are reordered by the response index so they line up with the input.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(e.model),
		Dimensions:     openai.Int(int64(e.dimensions)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, &EmbedError{Message: "embedding request failed", Cause: err}
	}

	if len(resp.Data) != len(texts) {
		return nil, &EmbedError{
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	vectors := make([][]float64, len(texts))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, &EmbedError{
				Message: fmt.Sprintf("embedding index %d out of range for %d inputs", idx, len(texts)),
			}
		}
		vectors[idx] = d.Embedding
	}

	for i, vec := range vectors {
		if len(vec) != e.dimensions {
			return nil, &EmbedError{
				Message: fmt.Sprintf("text %d: got %d dimensions, want %d", i, len(vec), e.dimensions),
			}
		}
	}

	return vectors, nil
}

// Model returns the embedding model name
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Dimensions returns the requested output dimensionality
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
