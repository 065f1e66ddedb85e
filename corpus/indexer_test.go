package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawchat-backend/corpus/corpustest"
	"lawchat-backend/models"
)

func numbers(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Number)
	}
	return out
}

func TestPathsTrackRunningHeading(t *testing.T) {
	law := corpustest.CivilCode()
	paths := make(map[string]models.HierarchyPath)
	for _, e := range Paths(law) {
		paths[e.Article.Number] = e.Path
	}

	assert.Equal(t, models.HierarchyPath{"第一編", "第一章", "", ""}, paths["第 1 條"])
	assert.Equal(t, models.HierarchyPath{"第一編", "第二章", "第一節", ""}, paths["第 6 條"])
	assert.Equal(t, models.HierarchyPath{"第一編", "第二章", "第二節", "第一款"}, paths["第 25 條"])
	// entering a chapter clears section and subsection
	assert.Equal(t, models.HierarchyPath{"第一編", "第四章", "第二節", ""}, paths["第 83 條"])
	assert.Equal(t, models.HierarchyPath{"第二編", "第一章", "", ""}, paths["第 153 條"])
	// "附則" carries no marker and leaves the path alone
	assert.Equal(t, models.HierarchyPath{"第三編", "", "", ""}, paths["第 757 條"])
}

func TestArticlesByPathsPrefixMatch(t *testing.T) {
	law := corpustest.CivilCode()

	tests := []struct {
		name    string
		filters []models.HierarchyPath
		want    []string
	}{
		{
			name:    "whole part",
			filters: []models.HierarchyPath{{"第二編", "", "", ""}},
			want:    []string{"第 153 條", "第 183 條"},
		},
		{
			name:    "chapter within part",
			filters: []models.HierarchyPath{{"第一編", "第二章", "", ""}},
			want:    []string{"第 6 條", "第 25 條"},
		},
		{
			name:    "full tuple",
			filters: []models.HierarchyPath{{"第一編", "第二章", "第二節", "第一款"}},
			want:    []string{"第 25 條"},
		},
		{
			name: "overlapping filters return each article once",
			filters: []models.HierarchyPath{
				{"第一編", "第四章", "", ""},
				{"第一編", "第四章", "第二節", ""},
			},
			want: []string{"第 83 條", "第 84 條", "第 85 條", "第 123-1 條"},
		},
		{
			name:    "chapter without part matches nothing",
			filters: []models.HierarchyPath{{"", "第一章", "", ""}},
			want:    []string{},
		},
		{
			name:    "unknown label",
			filters: []models.HierarchyPath{{"第九編", "", "", ""}},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArticlesByPaths(law, tt.filters)
			assert.Equal(t, tt.want, numbers(got))
		})
	}
}

func TestArticlesByPathsNeverReturnsHeadings(t *testing.T) {
	law := corpustest.CivilCode()
	filters := []models.HierarchyPath{{"第一編", "", "", ""}, {"第二編", "", "", ""}, {"第三編", "", "", ""}}

	got := ArticlesByPaths(law, filters)
	require.NotEmpty(t, got)

	resolved := make(map[*models.Article]models.HierarchyPath)
	for _, e := range Paths(law) {
		resolved[e.Article] = e.Path
	}
	for _, a := range got {
		assert.False(t, a.IsHeading(), "heading %q returned", a.Content)
		matched := false
		for _, f := range filters {
			if f.Matches(resolved[a]) {
				matched = true
			}
		}
		assert.True(t, matched, "article %s matches no filter", a.Number)
	}
}

func TestTableOfContents(t *testing.T) {
	law := corpustest.NewLaw("測試法",
		corpustest.H("第 一 章 總則"),
		corpustest.A("第 1 條", "內容"),
		corpustest.H("第 二 章 附則"),
	)
	assert.Equal(t, "第 一 章 總則\n第 二 章 附則\n", TableOfContents(law))
}

func TestPartTitle(t *testing.T) {
	law := corpustest.CivilCode()

	title, ok := PartTitle(law, "第二編")
	require.True(t, ok)
	assert.Equal(t, "債", title)

	_, ok = PartTitle(law, "第九編")
	assert.False(t, ok)
}

func TestFindArticleSubstring(t *testing.T) {
	law := corpustest.CivilCode()

	a, err := FindArticle(law, "83")
	require.NoError(t, err)
	assert.Equal(t, "第 83 條", a.Number)

	a, err = FindArticle(law, "123-1")
	require.NoError(t, err)
	assert.Equal(t, "第 123-1 條", a.Number)

	_, err = FindArticle(law, "999")
	assert.ErrorIs(t, err, models.ErrArticleNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = FindArticle(law, "  ")
	assert.ErrorIs(t, err, models.ErrArticleNotFound)
}

func TestArticlesByNumbersSkipsMissesAndDuplicates(t *testing.T) {
	law := corpustest.CivilCode()
	got := ArticlesByNumbers(law, []string{"83", "999", "第 83 條", "153"})
	assert.Equal(t, []string{"第 83 條", "第 153 條"}, numbers(got))
}

func TestAllArticlesIgnoresRemoved(t *testing.T) {
	law := corpustest.CivilCode()
	all := AllArticles(law, false)
	kept := AllArticles(law, true)
	assert.Len(t, all, len(kept)+1)
	assert.NotContains(t, numbers(kept), "第 85 條")
}

func TestHasStructure(t *testing.T) {
	assert.True(t, HasStructure(corpustest.CivilCode()))
	assert.False(t, HasStructure(corpustest.ObligationsCompanion()))
}
