package retrieval

import (
	"sort"

	"lawchat-backend/models"
)

const (
	DefaultSimilarityThreshold float32 = 0.7
	DefaultMaxRows                     = 100
)

// ScoredArticle is an article with its similarity to a query
type ScoredArticle struct {
	Article *models.Article
	Score   float32
}

// RankByDotProduct scores every candidate with an embedding of the query's
// dimension, keeps those scoring at least threshold, and returns at most
// maxRows of them by descending score. Ties keep candidate order
func RankByDotProduct(query []float32, candidates []*models.Article, threshold float32, maxRows int) []ScoredArticle {
	if len(query) == 0 || maxRows <= 0 {
		return nil
	}

	scored := make([]ScoredArticle, 0, len(candidates))
	for _, a := range candidates {
		if len(a.Embedding) != len(query) {
			continue
		}
		s := dot(query, a.Embedding)
		if s < threshold {
			continue
		}
		scored = append(scored, ScoredArticle{Article: a, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxRows {
		scored = scored[:maxRows]
	}
	return scored
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
