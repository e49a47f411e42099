package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("ai provider unavailable")

const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
	EmbedBatch(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IEmbedder converts texts into fixed-length vectors. EmbedBatch and
// EmbedQuery must hit the same model with the same configuration, or
// every similarity score silently degrades.
type IEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt)
}

type embedder struct {
	provider IProvider
	model    string
	dim      int
}

// NewEmbedder binds a provider to an embedding model. A positive dim is
// enforced on every returned vector; the vector column is fixed-width,
// so a wrong-dimension model should fail here rather than at insert.
func NewEmbedder(p IProvider, model string, dim int) IEmbedder {
	return &embedder{provider: p, model: model, dim: dim}
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.provider.EmbedBatch(ctx, e.model, texts, TaskTypeDocument)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if e.dim > 0 && len(vec) != e.dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(vec), e.dim)
		}
	}
	return vectors, nil
}

func (e *embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.provider.EmbedBatch(ctx, e.model, []string{text}, TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d for query", len(vectors))
	}
	if e.dim > 0 && len(vectors[0]) != e.dim {
		return nil, fmt.Errorf("query embedding has dimension %d, want %d", len(vectors[0]), e.dim)
	}
	return vectors[0], nil
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}
