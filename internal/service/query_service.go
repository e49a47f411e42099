package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/repochat/internal/ai"
	"github.com/xxxsen/repochat/internal/model"
)

const (
	defaultTopK          = 10
	defaultThreshold     = 0.15
	defaultFallbackLimit = 5

	// exact-match retrieval returns every chunk of the targeted file,
	// bounded only by this safety cap
	fileMatchLimit = 1000

	noDocumentsAnswer = "I couldn't find any documents for this repository. The repository might not have been ingested yet."
)

type QueryResult struct {
	Answer    string            `json:"answer"`
	Sources   []model.SourceRef `json:"sources"`
	ModelUsed string            `json:"model_used"`
}

type QueryOptions struct {
	TopK          int
	Threshold     float64
	FallbackLimit int
	Timeout       time.Duration
}

type QueryService struct {
	embedder      ai.IEmbedder
	generator     ai.IGenerator
	fragments     FragmentStore
	modelName     string
	topK          int
	threshold     float64
	fallbackLimit int
	timeout       time.Duration
	cache         *expirable.LRU[string, *QueryResult]
}

func NewQueryService(embedder ai.IEmbedder, generator ai.IGenerator, fragments FragmentStore, modelName string, opts QueryOptions) *QueryService {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	if opts.FallbackLimit <= 0 {
		opts.FallbackLimit = defaultFallbackLimit
	}
	return &QueryService{
		embedder:      embedder,
		generator:     generator,
		fragments:     fragments,
		modelName:     modelName,
		topK:          opts.TopK,
		threshold:     opts.Threshold,
		fallbackLimit: opts.FallbackLimit,
		timeout:       opts.Timeout,
		cache:         expirable.NewLRU[string, *QueryResult](10000, nil, 2*time.Hour),
	}
}

// Query retrieves relevant fragments and synthesizes an answer. A
// generation failure still produces a well-formed result with the
// error text in the answer field.
func (s *QueryService) Query(ctx context.Context, repoURL, ownerID, question string) (*QueryResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("repo_url", repoURL), zap.String("question", question))

	cacheKey := answerCacheKey(repoURL, ownerID, s.modelName, question)
	if cached, ok := s.cache.Get(cacheKey); ok {
		logger.Debug("answer cache hit")
		return cached, nil
	}

	docs := s.retrieve(ctx, repoURL, ownerID, question)
	if len(docs) == 0 {
		return &QueryResult{
			Answer:    noDocumentsAnswer,
			Sources:   []model.SourceRef{},
			ModelUsed: s.modelName,
		}, nil
	}
	if len(docs) > s.topK {
		docs = docs[:s.topK]
	}
	logger.Info("fragments retrieved", zap.Int("count", len(docs)))

	listing := ""
	if row, err := s.fragments.GetListing(ctx, repoURL, ownerID); err != nil {
		logger.Warn("fetch file listing failed", zap.Error(err))
	} else if row != nil {
		listing = row.Content
	}

	prompt := BuildPrompt(BuildContext(listing, docs), question)

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, genErr := s.generator.Generate(genCtx, prompt)
	if genErr != nil {
		logger.Error("answer generation failed", zap.Error(genErr))
		answer = fmt.Sprintf("Error generating answer: %v", genErr)
	}

	result := &QueryResult{
		Answer:    answer,
		Sources:   BuildSources(docs),
		ModelUsed: s.modelName,
	}
	if genErr == nil {
		s.cache.Add(cacheKey, result)
	}
	return result, nil
}

// retrieve runs the staged retrieval ladder. Store errors inside a
// stage are logged and treated as an empty stage so the next stage
// still gets its chance.
func (s *QueryService) retrieve(ctx context.Context, repoURL, ownerID, question string) []model.RetrievedDocument {
	logger := logutil.GetLogger(ctx).With(zap.String("repo_url", repoURL))

	if name := ExtractFileName(question); name != "" {
		logger.Info("file-specific question detected", zap.String("file", name))
		docs, err := s.fragments.MatchByPath(ctx, repoURL, ownerID, name, fileMatchLimit)
		if err != nil {
			logger.Warn("file match failed", zap.String("file", name), zap.Error(err))
		}
		if len(docs) > 0 {
			return docs
		}
		logger.Info("no chunks for file, falling through to semantic search", zap.String("file", name))
	}

	embedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		logger.Warn("embed query failed", zap.Error(err))
	} else {
		docs, err := s.fragments.SimilaritySearch(ctx, repoURL, ownerID, embedding, s.threshold, s.topK)
		if err != nil {
			logger.Warn("similarity search failed", zap.Error(err))
		}
		if len(docs) > 0 {
			return docs
		}
	}

	logger.Info("no matches found, using fallback")
	docs, err := s.fragments.ListAny(ctx, repoURL, ownerID, s.fallbackLimit)
	if err != nil {
		logger.Warn("fallback listing failed", zap.Error(err))
		return nil
	}
	return docs
}

func answerCacheKey(repoURL, ownerID, modelName, question string) string {
	sum := sha256.Sum256([]byte(repoURL + "\n" + ownerID + "\n" + modelName + "\n" + question))
	return hex.EncodeToString(sum[:])
}
