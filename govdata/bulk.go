// Package govdata reads statutes from the national law database bulk dump
// (ChLaw.json): a single document {"Laws": [...]} listing every statute with
// its heading and article records
package govdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lawchat-backend/models"
	"lawchat-backend/storage"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type rawDump struct {
	Laws []rawLaw `json:"Laws"`
}

type rawLaw struct {
	LawLevel         string       `json:"LawLevel"`
	LawName          string       `json:"LawName"`
	LawURL           string       `json:"LawURL"`
	LawCategory      string       `json:"LawCategory"`
	LawModifiedDate  string       `json:"LawModifiedDate"`
	LawEffectiveDate string       `json:"LawEffectiveDate"`
	LawEffectiveNote string       `json:"LawEffectiveNote"`
	LawAbandonNote   string       `json:"LawAbandonNote"`
	LawArticles      []rawArticle `json:"LawArticles"`
}

type rawArticle struct {
	ArticleType    string `json:"ArticleType"`
	ArticleNo      string `json:"ArticleNo"`
	ArticleContent string `json:"ArticleContent"`
}

// Opener opens the raw dump
type Opener func(ctx context.Context) (io.ReadCloser, error)

// FileOpener reads the dump from a local file
func FileOpener(path string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open law dump: %w", err)
		}
		return f, nil
	}
}

// URLOpener downloads the dump. A nil client means http.DefaultClient
func URLOpener(client *http.Client, rawURL string) Opener {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build law dump request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download law dump: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download law dump: status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}
}

// StorageOpener reads the dump from object storage
func StorageOpener(store storage.Storage, key string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return store.Get(ctx, key)
	}
}

// BulkSource serves single statutes out of the bulk dump. The dump is read on
// first use; a failed read is retried on the next call
type BulkSource struct {
	open   Opener
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	laws map[string]*rawLaw
}

// BulkOption is a functional option for BulkSource
type BulkOption func(*BulkSource)

// BulkWithLogger sets the logger
func BulkWithLogger(logger *zap.Logger) BulkOption {
	return func(s *BulkSource) {
		s.logger = logger
	}
}

// BulkWithClock sets the clock used to discard effective dates in the future
func BulkWithClock(now func() time.Time) BulkOption {
	return func(s *BulkSource) {
		s.now = now
	}
}

// NewBulkSource creates a bulk dump source
func NewBulkSource(open Opener, opts ...BulkOption) *BulkSource {
	s := &BulkSource{open: open, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Fetch returns the statute with the given name, or models.ErrLawNotFound
func (s *BulkSource) Fetch(ctx context.Context, name string) (*models.Law, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBlankLawName
	}

	laws, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := laws[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrLawNotFound, name)
	}

	law := convert(raw, s.now())
	if err := law.Validate(); err != nil {
		return nil, err
	}
	return law, nil
}

// Names lists every statute in the dump
func (s *BulkSource) Names(ctx context.Context) ([]string, error) {
	laws, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(laws))
	for name := range laws {
		names = append(names, name)
	}
	return names, nil
}

func (s *BulkSource) index(ctx context.Context) (map[string]*rawLaw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.laws != nil {
		return s.laws, nil
	}

	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dump, err := decodeDump(rc)
	if err != nil {
		return nil, err
	}

	laws := make(map[string]*rawLaw, len(dump.Laws))
	for i := range dump.Laws {
		raw := &dump.Laws[i]
		name := strings.TrimSpace(raw.LawName)
		if name == "" {
			continue
		}
		if _, dup := laws[name]; dup {
			continue
		}
		laws[name] = raw
	}
	s.laws = laws
	s.logger.Info("law dump loaded", zap.Int("laws", len(laws)))
	return laws, nil
}

func decodeDump(r io.Reader) (*rawDump, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read law dump: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var dump rawDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to decode law dump: %w", err)
	}
	return &dump, nil
}

func convert(raw *rawLaw, now time.Time) *models.Law {
	name := strings.TrimSpace(raw.LawName)
	law := &models.Law{
		Name:         name,
		Level:        raw.LawLevel,
		URL:          raw.LawURL,
		PCode:        pcode(raw.LawURL),
		ModifiedDate: models.ParseLawDate(raw.LawModifiedDate),
		AbandonNote:  strings.TrimSpace(raw.LawAbandonNote),
	}

	// the dump carries placeholder effective dates far in the future
	effective := models.ParseLawDate(raw.LawEffectiveDate)
	if effective.IsSet() && effective.Year() <= now.Year() {
		law.EffectiveDate = effective
	}

	for _, ra := range raw.LawArticles {
		a := &models.Article{LawName: name, Content: strings.TrimSpace(ra.ArticleContent)}
		switch models.ArticleType(ra.ArticleType) {
		case models.ArticleTypeArticle:
			a.Type = models.ArticleTypeArticle
			a.Number = strings.TrimSpace(ra.ArticleNo)
		case models.ArticleTypeHeading:
			a.Type = models.ArticleTypeHeading
		default:
			continue
		}
		law.Articles = append(law.Articles, a)
	}
	return law
}

// pcode extracts the statute code from a law database URL
func pcode(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for k, v := range u.Query() {
		if strings.EqualFold(k, "pcode") && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
