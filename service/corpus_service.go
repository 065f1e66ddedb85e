package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"lawchat-backend/corpus"
	"lawchat-backend/llm"
	"lawchat-backend/models"
	"lawchat-backend/repository"
	"lawchat-backend/resilience"
	"lawchat-backend/retrieval"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LawSource fetches raw statutes from the upstream law database
type LawSource interface {
	Fetch(ctx context.Context, name string) (*models.Law, error)
}

// VectorSearcher ranks persisted article embeddings without loading the law
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, lawName string, embedding []float32, limit int) ([]repository.SimilarArticle, error)
}

const defaultEmbedConcurrency = 4

// CorpusService owns every loaded law, keyed by name. Cached laws are shared
// read-only between requests
type CorpusService struct {
	store       repository.LawStore
	source      LawSource
	embedder    llm.Embedder
	policy      resilience.Policy
	concurrency int
	logger      *zap.Logger

	mu    sync.RWMutex
	laws  map[string]*models.Law
	group singleflight.Group
}

// CorpusServiceOption is a functional option for CorpusService
type CorpusServiceOption func(*CorpusService)

// CorpusWithStore sets where loaded laws are persisted
func CorpusWithStore(store repository.LawStore) CorpusServiceOption {
	return func(s *CorpusService) {
		s.store = store
	}
}

// CorpusWithSource sets the upstream law source
func CorpusWithSource(source LawSource) CorpusServiceOption {
	return func(s *CorpusService) {
		s.source = source
	}
}

// CorpusWithEmbedder sets the embedder used for article vectors
func CorpusWithEmbedder(embedder llm.Embedder) CorpusServiceOption {
	return func(s *CorpusService) {
		s.embedder = embedder
	}
}

// CorpusWithRetryPolicy sets the retry policy for embedding calls
func CorpusWithRetryPolicy(policy resilience.Policy) CorpusServiceOption {
	return func(s *CorpusService) {
		s.policy = policy
	}
}

// CorpusWithConcurrency bounds parallel embedding calls
func CorpusWithConcurrency(n int) CorpusServiceOption {
	return func(s *CorpusService) {
		s.concurrency = n
	}
}

// CorpusWithLogger sets the logger
func CorpusWithLogger(logger *zap.Logger) CorpusServiceOption {
	return func(s *CorpusService) {
		s.logger = logger
	}
}

// NewCorpusService creates a new corpus service
func NewCorpusService(opts ...CorpusServiceOption) *CorpusService {
	s := &CorpusService{
		laws:        make(map[string]*models.Law),
		concurrency: defaultEmbedConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.policy.Attempts == 0 {
		s.policy = resilience.IndexingPolicy(s.logger)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Law returns the named law from the cache, the persisted store or the
// upstream source, in that order. Laws fetched from upstream are embedded
// and persisted before they are cached
func (s *CorpusService) Law(ctx context.Context, name string) (*models.Law, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBlankLawName
	}
	if law, ok := s.cached(name); ok {
		return law, nil
	}

	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		if law, ok := s.cached(name); ok {
			return law, nil
		}
		law, err := s.load(ctx, name)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.laws[name] = law
		s.mu.Unlock()
		return law, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Law), nil
}

func (s *CorpusService) cached(name string) (*models.Law, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	law, ok := s.laws[name]
	return law, ok
}

func (s *CorpusService) load(ctx context.Context, name string) (*models.Law, error) {
	if s.store != nil {
		law, err := s.store.Load(ctx, name)
		switch {
		case err == nil:
			s.logger.Info("law loaded", zap.String("law", name), zap.String("source", "store"))
			return law, nil
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("failed to load law %s: %w", name, err)
		}
	}

	if s.source == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrLawNotFound, name)
	}
	law, err := s.source.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("law loaded", zap.String("law", name), zap.String("source", "fetch"))

	if s.embedder != nil {
		if err := s.BuildEmbeddings(ctx, law); err != nil {
			return nil, err
		}
	}
	s.persist(ctx, law)
	return law, nil
}

func (s *CorpusService) persist(ctx context.Context, law *models.Law) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, law); err != nil {
		s.logger.Error("failed to persist law", zap.String("law", law.Name), zap.Error(err))
	}
}

// BuildEmbeddings attaches a document embedding to every live article of law
// that has none yet, then marks the law embedded. Abandoned laws are left
// untouched. law must not be shared while this runs
func (s *CorpusService) BuildEmbeddings(ctx context.Context, law *models.Law) error {
	if s.embedder == nil {
		return errors.New("embedder not set")
	}
	if law.IsAbandoned() {
		s.logger.Info("skipping abandoned law", zap.String("law", law.Name))
		return nil
	}

	var pending []*models.Article
	for _, a := range corpus.AllArticles(law, true) {
		if !a.HasEmbedding() {
			pending = append(pending, a)
		}
	}

	vectors := make([][]float32, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, a := range pending {
		g.Go(func() error {
			vec, err := resilience.Do(gctx, s.policy, "embed_article", func(ctx context.Context) ([]float32, error) {
				return s.embedder.Embed(ctx, a.Content, llm.RoleDocument, a.Title())
			})
			if err != nil {
				return fmt.Errorf("failed to embed %s: %w", a.Title(), err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, a := range pending {
		a.Embedding = vectors[i]
	}
	law.Embedded = true
	s.logger.Info("law embedded", zap.String("law", law.Name), zap.Int("articles", len(pending)))
	return nil
}

// EnsureEmbedded loads the named law and, unless it is already embedded or
// abandoned, embeds a copy, persists it and replaces the cached entry
func (s *CorpusService) EnsureEmbedded(ctx context.Context, name string) (*models.Law, error) {
	law, err := s.Law(ctx, name)
	if err != nil {
		return nil, err
	}
	if law.Embedded || law.IsAbandoned() {
		return law, nil
	}

	fresh := cloneLaw(law)
	if err := s.BuildEmbeddings(ctx, fresh); err != nil {
		return nil, err
	}
	s.persist(ctx, fresh)

	s.mu.Lock()
	s.laws[fresh.Name] = fresh
	s.mu.Unlock()
	return fresh, nil
}

// SearchRequest represents a request for the articles of a law most similar
// to a query
type SearchRequest struct {
	LawName   string
	Query     string
	Threshold float32
	Limit     int
}

// Search embeds the query and ranks the law's articles by inner product,
// in the database when the store supports it and in memory otherwise
func (s *CorpusService) Search(ctx context.Context, req SearchRequest) ([]retrieval.ScoredArticle, error) {
	if s.embedder == nil {
		return nil, errors.New("embedder not set")
	}
	if req.Limit <= 0 {
		req.Limit = retrieval.DefaultMaxRows
	}

	law, err := s.Law(ctx, req.LawName)
	if err != nil {
		return nil, err
	}
	vec, err := resilience.Do(ctx, s.policy, "embed_query", func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, req.Query, llm.RoleQuery, "")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if searcher, ok := s.store.(VectorSearcher); ok {
		similar, err := searcher.SearchSimilar(ctx, law.Name, vec, req.Limit)
		if err != nil {
			return nil, err
		}
		out := make([]retrieval.ScoredArticle, 0, len(similar))
		for _, sa := range similar {
			if sa.Score < req.Threshold {
				break
			}
			out = append(out, retrieval.ScoredArticle{Article: sa.Article, Score: sa.Score})
		}
		return out, nil
	}

	return retrieval.RankByDotProduct(vec, corpus.AllArticles(law, true), req.Threshold, req.Limit), nil
}

func cloneLaw(law *models.Law) *models.Law {
	out := *law
	out.Articles = make([]*models.Article, len(law.Articles))
	for i, a := range law.Articles {
		c := *a
		out.Articles[i] = &c
	}
	return &out
}
