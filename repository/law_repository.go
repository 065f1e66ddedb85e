package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lawchat-backend/corpus"
	"lawchat-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SimilarArticle is an article scored by inner product against a query
type SimilarArticle struct {
	Article *models.Article
	Score   float32
}

// LawRepository handles database operations for laws and their articles
type LawRepository struct {
	db *pgxpool.Pool
}

// NewLawRepository creates a new law repository
func NewLawRepository(db *pgxpool.Pool) *LawRepository {
	return &LawRepository{db: db}
}

// Load retrieves a law with its records in their original order
func (r *LawRepository) Load(ctx context.Context, name string) (*models.Law, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBlankLawName
	}

	law := &models.Law{}
	var (
		id                  int64
		modified, effective *time.Time
	)
	query := `
		SELECT id, name, level, url, pcode, modified_date, effective_date, abandon_note, embedded
		FROM laws
		WHERE name = $1`

	err := r.db.QueryRow(ctx, query, name).Scan(
		&id,
		&law.Name,
		&law.Level,
		&law.URL,
		&law.PCode,
		&modified,
		&effective,
		&law.AbandonNote,
		&law.Embedded,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrLawNotFound, name)
		}
		return nil, fmt.Errorf("failed to get law: %w", err)
	}
	law.ModifiedDate = fromDate(modified)
	law.EffectiveDate = fromDate(effective)

	rows, err := r.db.Query(ctx, `
		SELECT type, number, content, embedding::text
		FROM law_articles
		WHERE law_id = $1
		ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query law articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &models.Article{LawName: law.Name}
		var (
			typ       string
			embedding *string
		)
		if err := rows.Scan(&typ, &a.Number, &a.Content, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan law article: %w", err)
		}
		a.Type = models.ArticleType(typ)
		if embedding != nil {
			vec, err := parseVector(*embedding)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %s: %v", models.ErrDataCorruption, law.Name, a.Number, err)
			}
			a.Embedding = vec
		}
		law.Articles = append(law.Articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating law articles: %w", err)
	}

	if err := law.Validate(); err != nil {
		return nil, err
	}
	return law, nil
}

// Save upserts a law and replaces all of its articles in one transaction
func (r *LawRepository) Save(ctx context.Context, law *models.Law) error {
	if err := law.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO laws (name, level, url, pcode, modified_date, effective_date, abandon_note, embedded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			level = EXCLUDED.level,
			url = EXCLUDED.url,
			pcode = EXCLUDED.pcode,
			modified_date = EXCLUDED.modified_date,
			effective_date = EXCLUDED.effective_date,
			abandon_note = EXCLUDED.abandon_note,
			embedded = EXCLUDED.embedded,
			updated_at = NOW()
		RETURNING id`,
		law.Name,
		law.Level,
		law.URL,
		law.PCode,
		toDate(law.ModifiedDate),
		toDate(law.EffectiveDate),
		law.AbandonNote,
		law.Embedded,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert law: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM law_articles WHERE law_id = $1", id); err != nil {
		return fmt.Errorf("failed to clear law articles: %w", err)
	}

	batch := &pgx.Batch{}
	for i, a := range law.Articles {
		var embedding *string
		if a.HasEmbedding() {
			s := formatVector(a.Embedding)
			embedding = &s
		}
		batch.Queue(`
			INSERT INTO law_articles (law_id, ordinal, type, number, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6::vector)`,
			id, i, string(a.Type), a.Number, a.Content, embedding)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert law articles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit law: %w", err)
	}
	return nil
}

// SearchSimilar returns the articles of one law closest to embedding by
// inner product, best first
func (r *LawRepository) SearchSimilar(ctx context.Context, lawName string, embedding []float32, limit int) ([]SimilarArticle, error) {
	if len(embedding) == 0 {
		return nil, errors.New("embedding must not be empty")
	}

	rows, err := r.db.Query(ctx, `
		SELECT a.number, a.content, (a.embedding <#> $2::vector) * -1 AS score
		FROM law_articles a
		JOIN laws l ON l.id = a.law_id
		WHERE l.name = $1
			AND a.type = 'A'
			AND a.embedding IS NOT NULL
			AND a.content <> $3
		ORDER BY a.embedding <#> $2::vector
		LIMIT $4`,
		lawName, formatVector(embedding), corpus.RemovedMarker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search law articles: %w", err)
	}
	defer rows.Close()

	var results []SimilarArticle
	for rows.Next() {
		a := &models.Article{LawName: lawName, Type: models.ArticleTypeArticle}
		var score float64
		if err := rows.Scan(&a.Number, &a.Content, &score); err != nil {
			return nil, fmt.Errorf("failed to scan law article: %w", err)
		}
		results = append(results, SimilarArticle{Article: a, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating law articles: %w", err)
	}
	return results, nil
}

// formatVector formats an embedding vector as a pgvector literal
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector reads a pgvector text literal
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("malformed vector %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}
	fields := strings.Split(body, ",")
	vec := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector component %q", f)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

func toDate(d models.LawDate) *time.Time {
	if !d.IsSet() {
		return nil
	}
	t := d.Time
	return &t
}

func fromDate(t *time.Time) models.LawDate {
	if t == nil {
		return models.LawDate{}
	}
	return models.LawDate{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}
