// Package retrieval chooses the articles of a statute that ground an answer
// to a natural-language question
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lawchat-backend/corpus"
	"lawchat-backend/llm"
	"lawchat-backend/models"
)

// Mode records which path produced a result
type Mode string

const (
	ModeOutOfDomain Mode = "out_of_domain"
	ModeDirect      Mode = "direct"
	ModeHierarchy   Mode = "hierarchy"
	ModeSemantic    Mode = "semantic"
)

// Reasoner answers the classifier prompts
type Reasoner interface {
	Generate(ctx context.Context, messages []llm.Message, temperature float32) (string, error)
}

// LawLookup resolves companion laws by name
type LawLookup interface {
	Law(ctx context.Context, name string) (*models.Law, error)
}

// CompanionConfig names the enactment law that accompanies each part of a
// code. "{law}" and "{part}" are replaced with the law name and part title
type CompanionConfig struct {
	Template         string `yaml:"template"`
	GeneralPartTitle string `yaml:"general_part_title"`
	GeneralTemplate  string `yaml:"general_template"`
}

// DefaultCompanionConfig follows the 民法 naming convention
func DefaultCompanionConfig() CompanionConfig {
	return CompanionConfig{
		Template:         "{law}{part}編施行法",
		GeneralPartTitle: "總則",
		GeneralTemplate:  "{law}總則施行法",
	}
}

// Name returns the companion law name for a part. An empty part title is the
// unscoped default and maps to the general template
func (c CompanionConfig) Name(lawName, partTitle string) string {
	tmpl := c.Template
	if partTitle == "" || partTitle == c.GeneralPartTitle {
		tmpl = c.GeneralTemplate
	}
	if tmpl == "" {
		return ""
	}
	return strings.NewReplacer("{law}", lawName, "{part}", partTitle).Replace(tmpl)
}

// Config tunes the engine
type Config struct {
	HierarchyEnabled    bool
	SimilarityThreshold float32
	MaxRows             int
	Temperature         float32
	Companions          CompanionConfig
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		HierarchyEnabled:    true,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxRows:             DefaultMaxRows,
		Companions:          DefaultCompanionConfig(),
	}
}

// Result is the outcome of one retrieval
type Result struct {
	Mode       Mode
	References models.ReferenceSet
	Articles   []*models.Article
	Scores     []float32 // parallel to Articles in semantic mode
}

// OutOfDomain reports whether the query was rejected as unrelated
func (r *Result) OutOfDomain() bool {
	return r.Mode == ModeOutOfDomain
}

// Engine runs the three-step classification with a semantic fallback
type Engine struct {
	reasoner Reasoner
	embedder llm.Embedder
	laws     LawLookup
	cfg      Config
	logger   *zap.Logger
}

// EngineOption is a functional option for Engine
type EngineOption func(*Engine)

// WithReasoner sets the classifier model
func WithReasoner(r Reasoner) EngineOption {
	return func(e *Engine) {
		e.reasoner = r
	}
}

// WithEmbedder sets the embedding model used by the semantic fallback
func WithEmbedder(emb llm.Embedder) EngineOption {
	return func(e *Engine) {
		e.embedder = emb
	}
}

// WithLawLookup sets where companion laws are loaded from
func WithLawLookup(l LawLookup) EngineOption {
	return func(e *Engine) {
		e.laws = l
	}
}

// WithConfig sets the engine configuration
func WithConfig(cfg Config) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a retrieval engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Retrieve selects the grounding articles of law for query. The law is only
// read. Classifier answers that cannot be parsed end in an out-of-domain
// result; errors from the model services are returned as is
func (e *Engine) Retrieve(ctx context.Context, query string, law *models.Law) (*Result, error) {
	if law == nil {
		return nil, models.ErrLawNotFound
	}
	if !e.cfg.HierarchyEnabled || e.reasoner == nil || !corpus.HasStructure(law) {
		return e.semantic(ctx, query, law)
	}

	inDomain, err := e.askYesNo(ctx, domainPrompt(law.Name, query))
	if err != nil {
		return nil, fmt.Errorf("domain check: %w", err)
	}
	if !inDomain {
		e.logger.Debug("query out of domain", zap.String("law", law.Name))
		return outOfDomain(), nil
	}

	specific, err := e.askYesNo(ctx, specificityPrompt(law.Name, query))
	if err != nil {
		return nil, fmt.Errorf("specificity check: %w", err)
	}
	if specific {
		return e.direct(ctx, query, law)
	}
	return e.hierarchy(ctx, query, law)
}

func (e *Engine) ask(ctx context.Context, prompt string) (string, error) {
	return e.reasoner.Generate(ctx, []llm.Message{llm.UserMessage(prompt)}, e.cfg.Temperature)
}

// askYesNo treats an unreadable answer as no
func (e *Engine) askYesNo(ctx context.Context, prompt string) (bool, error) {
	answer, err := e.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	yes, ok := ParseYesNo(answer)
	if !ok {
		e.logger.Debug("unreadable yes/no answer", zap.String("answer", answer))
	}
	return yes && ok, nil
}

func (e *Engine) direct(ctx context.Context, query string, law *models.Law) (*Result, error) {
	answer, err := e.ask(ctx, articleNumbersPrompt(law.Name, query))
	if err != nil {
		return nil, fmt.Errorf("article numbers: %w", err)
	}
	refs := ParseReferences(answer)
	if refs.Kind() != models.ReferenceArticleNumbers {
		e.logger.Debug("no article numbers in answer", zap.String("answer", answer))
		return outOfDomain(), nil
	}

	articles := corpus.ArticlesByNumbers(law, refs.Numbers())
	e.logger.Debug("direct lookup",
		zap.Strings("numbers", refs.Numbers()),
		zap.Int("articles", len(articles)),
	)
	return &Result{Mode: ModeDirect, References: refs, Articles: articles}, nil
}

func (e *Engine) hierarchy(ctx context.Context, query string, law *models.Law) (*Result, error) {
	answer, err := e.ask(ctx, chaptersPrompt(law.Name, corpus.TableOfContents(law), query))
	if err != nil {
		return nil, fmt.Errorf("chapter classification: %w", err)
	}
	refs := ParseReferences(answer)
	if refs.Kind() != models.ReferenceHierarchy {
		e.logger.Debug("no hierarchy paths in answer", zap.String("answer", answer))
		return outOfDomain(), nil
	}

	articles := corpus.ArticlesByPaths(law, refs.Paths())
	if len(articles) == 0 {
		e.logger.Debug("hierarchy matched no article, falling back to semantic search")
		return e.semantic(ctx, query, law)
	}

	articles = append(articles, e.companionArticles(ctx, law, refs.Paths())...)
	e.logger.Debug("hierarchy lookup",
		zap.Int("paths", len(refs.Paths())),
		zap.Int("articles", len(articles)),
	)
	return &Result{Mode: ModeHierarchy, References: refs, Articles: articles}, nil
}

// companionArticles loads the enactment law of every matched part. Missing
// companions are skipped
func (e *Engine) companionArticles(ctx context.Context, law *models.Law, paths []models.HierarchyPath) []*models.Article {
	if e.laws == nil {
		return nil
	}

	var out []*models.Article
	seen := make(map[string]struct{})
	for _, p := range paths {
		title := ""
		if p.Part() != "" {
			t, ok := corpus.PartTitle(law, p.Part())
			if !ok {
				continue
			}
			title = t
		}
		name := e.cfg.Companions.Name(law.Name, title)
		if name == "" || name == law.Name {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		companion, err := e.laws.Law(ctx, name)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				e.logger.Warn("failed to load companion law", zap.String("law", name), zap.Error(err))
			}
			continue
		}
		out = append(out, corpus.AllArticles(companion, false)...)
	}
	return out
}

func (e *Engine) semantic(ctx context.Context, query string, law *models.Law) (*Result, error) {
	res := &Result{Mode: ModeSemantic, References: models.OutOfDomain()}
	if e.embedder == nil {
		e.logger.Warn("semantic search requested without an embedder", zap.String("law", law.Name))
		return res, nil
	}

	vec, err := e.embedder.Embed(ctx, query, llm.RoleQuery, "")
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	ranked := RankByDotProduct(vec, corpus.AllArticles(law, true), e.cfg.SimilarityThreshold, e.cfg.MaxRows)
	for _, s := range ranked {
		res.Articles = append(res.Articles, s.Article)
		res.Scores = append(res.Scores, s.Score)
	}
	e.logger.Debug("semantic lookup", zap.Int("articles", len(res.Articles)))
	return res, nil
}

func outOfDomain() *Result {
	return &Result{Mode: ModeOutOfDomain, References: models.OutOfDomain()}
}
