package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lawchat-backend/models"
)

func article(number string, vec ...float32) *models.Article {
	return &models.Article{Number: number, Type: models.ArticleTypeArticle, Embedding: vec}
}

func TestRankByDotProduct(t *testing.T) {
	a1 := article("1", 1, 0)
	a2 := article("2", 0, 1)
	a3 := article("3", 0.9, 0.1)

	got := RankByDotProduct([]float32{1, 0}, []*models.Article{a1, a2, a3}, 0.7, 2)

	assert.Len(t, got, 2)
	assert.Same(t, a1, got[0].Article)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Same(t, a3, got[1].Article)
	assert.InDelta(t, 0.9, got[1].Score, 1e-6)
}

func TestRankByDotProductStableTies(t *testing.T) {
	a := article("a", 1, 0)
	b := article("b", 1, 0)
	c := article("c", 1, 0)

	got := RankByDotProduct([]float32{1, 0}, []*models.Article{a, b, c}, 0.5, 10)
	assert.Len(t, got, 3)
	assert.Same(t, a, got[0].Article)
	assert.Same(t, b, got[1].Article)
	assert.Same(t, c, got[2].Article)
}

func TestRankByDotProductSkipsUnembedded(t *testing.T) {
	plain := article("plain")
	wrongDim := article("3d", 1, 0, 0)
	ok := article("ok", 0.8, 0)

	got := RankByDotProduct([]float32{1, 0}, []*models.Article{plain, wrongDim, ok}, 0.7, 10)
	assert.Len(t, got, 1)
	assert.Same(t, ok, got[0].Article)

	assert.Empty(t, RankByDotProduct(nil, []*models.Article{ok}, 0, 10))
	assert.Empty(t, RankByDotProduct([]float32{1, 0}, []*models.Article{ok}, 0, 0))
}
