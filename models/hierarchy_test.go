package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		text      string
		wantOK    bool
		wantLevel HierarchyLevel
		wantLabel string
		wantTitle string
	}{
		{"第 一 編 總則", true, LevelPart, "第一編", "總則"},
		{"第 二 章 人", true, LevelChapter, "第二章", "人"},
		{"第 一 節 自然人", true, LevelSection, "第一節", "自然人"},
		{"第 一 款 通則", true, LevelSubsection, "第一款", "通則"},
		{"第一編 總則", true, LevelPart, "第一編", "總則"},
		{"總則編 總則", true, LevelPart, "總則編", "總則"},
		{"第 三 章 債編通則", true, LevelChapter, "第三章", "債編通則"},
		{"第 二 節之一 贈與", true, LevelSection, "第二節之一", "贈與"},
		{"附則", false, 0, "", ""},
		{"", false, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h, ok := ParseHeading(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantLevel, h.Level)
			assert.Equal(t, tt.wantLabel, h.Label)
			assert.Equal(t, tt.wantTitle, h.Title)
		})
	}
}

func TestHierarchyPathEnterClearsNarrowerLevels(t *testing.T) {
	p := HierarchyPath{"第一編", "第二章", "第一節", "第一款"}
	p.Enter(LevelChapter, "第三章")
	assert.Equal(t, HierarchyPath{"第一編", "第三章", "", ""}, p)

	p.Enter(LevelPart, "第二編")
	assert.Equal(t, HierarchyPath{"第二編", "", "", ""}, p)
}

func TestHierarchyPathMatches(t *testing.T) {
	article := HierarchyPath{"第一編", "第二章", "第二節", "第一款"}

	assert.True(t, HierarchyPath{"第一編", "第二章", "第二節", "第一款"}.Matches(article))
	assert.True(t, HierarchyPath{"第一編", "第二章", "第二節", ""}.Matches(article))
	assert.True(t, HierarchyPath{"第一編", "第二章", "", ""}.Matches(article))
	assert.True(t, HierarchyPath{"第一編", "", "", ""}.Matches(article))

	assert.False(t, HierarchyPath{"第一編", "第三章", "", ""}.Matches(article))
	assert.False(t, HierarchyPath{"", "第二章", "", ""}.Matches(article))
	assert.False(t, HierarchyPath{}.Matches(article))
	assert.False(t, HierarchyPath{}.Matches(HierarchyPath{}))
}

func TestHierarchyPathString(t *testing.T) {
	assert.Equal(t, "第一編/第二章", HierarchyPath{"第一編", "第二章", "", ""}.String())
	assert.Equal(t, "chapter", LevelChapter.String())
	assert.Equal(t, "款", LevelSubsection.Marker())
}
