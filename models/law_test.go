package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLaw() *Law {
	return &Law{
		Name:          "民法",
		Level:         "法律",
		URL:           "https://law.moj.gov.tw/LawClass/LawAll.aspx?pcode=B0000001",
		PCode:         "B0000001",
		ModifiedDate:  ParseLawDate("20210120"),
		EffectiveDate: LawDate{},
		Articles: []*Article{
			{LawName: "民法", Type: ArticleTypeHeading, Content: "第 一 編 總則"},
			{LawName: "民法", Type: ArticleTypeArticle, Number: "第 1 條", Content: "民事，法律所未規定者，依習慣；無習慣者，依法理。"},
			{LawName: "民法", Type: ArticleTypeArticle, Number: "第 2 條", Content: "民事所適用之習慣。", Embedding: []float32{0.5, -0.25}},
		},
	}
}

func TestLawJSONRoundTrip(t *testing.T) {
	law := sampleLaw()

	data, err := json.Marshal(law)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "20210120", raw["LawModifiedDate"])
	assert.Equal(t, "", raw["LawEffectiveDate"])
	first := raw["LawArticles"].([]any)[0].(map[string]any)
	assert.Equal(t, "", first["ArticleNumber"])
	assert.Equal(t, "C", first["ArticleType"])
	assert.NotContains(t, first, "ArticleEmbedding")

	var back Law
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, law.Name, back.Name)
	assert.Equal(t, law.Level, back.Level)
	assert.Equal(t, law.ModifiedDate.String(), back.ModifiedDate.String())
	assert.False(t, back.EffectiveDate.IsSet())
	assert.Equal(t, law.Articles, back.Articles)
}

func TestLawUnmarshalInfersMissingTypes(t *testing.T) {
	data := `{"LawName":"民法","LawLevel":"法律","LawModifiedDate":"","LawEffectiveDate":"",
		"LawArticles":[{"ArticleNumber":"","ArticleContent":"第 一 編 總則"},{"ArticleNumber":"第 1 條","ArticleContent":"x"}]}`

	var law Law
	require.NoError(t, json.Unmarshal([]byte(data), &law))
	require.Len(t, law.Articles, 2)
	assert.Equal(t, ArticleTypeHeading, law.Articles[0].Type)
	assert.Equal(t, ArticleTypeArticle, law.Articles[1].Type)
	assert.Equal(t, "民法", law.Articles[1].LawName)
	assert.NoError(t, law.Validate())
}

func TestLawValidate(t *testing.T) {
	assert.NoError(t, sampleLaw().Validate())

	blank := sampleLaw()
	blank.Name = " "
	assert.ErrorIs(t, blank.Validate(), ErrBlankLawName)

	numberedHeading := sampleLaw()
	numberedHeading.Articles[0].Number = "第 0 條"
	assert.ErrorIs(t, numberedHeading.Validate(), ErrDataCorruption)

	dup := sampleLaw()
	dup.Articles[2].Number = "第 1 條"
	assert.ErrorIs(t, dup.Validate(), ErrDataCorruption)

	badType := sampleLaw()
	badType.Articles[1].Type = "X"
	assert.ErrorIs(t, badType.Validate(), ErrDataCorruption)

	unnumbered := sampleLaw()
	unnumbered.Articles[1].Number = ""
	assert.ErrorIs(t, unnumbered.Validate(), ErrDataCorruption)
}

func TestParseLawDate(t *testing.T) {
	assert.Equal(t, "20240101", ParseLawDate("20240101").String())
	assert.False(t, ParseLawDate("").IsSet())
	assert.False(t, ParseLawDate("2024-01-01").IsSet())
}

func TestIsAbandoned(t *testing.T) {
	law := sampleLaw()
	assert.False(t, law.IsAbandoned())
	law.AbandonNote = "廢"
	assert.True(t, law.IsAbandoned())
}

func TestArticleTitle(t *testing.T) {
	law := sampleLaw()
	assert.Equal(t, "民法 第 1 條", law.Articles[1].Title())
	assert.Equal(t, "民法", law.Articles[0].Title())
}

func TestReferenceSetShapes(t *testing.T) {
	assert.True(t, HierarchyReferences(nil).IsOutOfDomain())
	assert.True(t, ArticleNumberReferences([]string{}).IsOutOfDomain())

	refs := ArticleNumberReferences([]string{"83"})
	assert.Equal(t, ReferenceArticleNumbers, refs.Kind())
	assert.Nil(t, refs.Paths())
	assert.Equal(t, "article_numbers", refs.Kind().String())

	paths := HierarchyReferences([]HierarchyPath{{"第一編", "", "", ""}})
	assert.Equal(t, ReferenceHierarchy, paths.Kind())
	assert.Nil(t, paths.Numbers())
}

func TestNotFoundErrors(t *testing.T) {
	assert.ErrorIs(t, ErrLawNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrArticleNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrBlankLawName, ErrNotFound)
}
